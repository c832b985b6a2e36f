package main

import (
	"os"

	"github.com/mamadbah2/restock/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
