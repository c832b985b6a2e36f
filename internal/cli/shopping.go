package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/restock/internal/app"
	"github.com/mamadbah2/restock/internal/export"
)

// NewShoppingListCommand exports the derived shopping list of one store.
func NewShoppingListCommand(rootOpts *RootOptions) *cobra.Command {
	var storeRef, format, out string

	cmd := &cobra.Command{
		Use:          "shopping-list",
		Short:        "Export a store's shopping list as csv or xlsx",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			return rootOpts.withServices(cmd.Context(), func(svcs *app.Services) error {
				store, err := resolveStore(cmd.Context(), svcs, storeRef)
				if err != nil {
					return err
				}

				var w io.Writer = cmd.OutOrStdout()
				if out != "" && out != "-" {
					file, err := os.Create(out)
					if err != nil {
						return err
					}
					defer file.Close()
					w = file
				}

				name, err := svcs.Shopping.Export(cmd.Context(), store.ID, f, w)
				if err != nil {
					return err
				}
				if w != cmd.OutOrStdout() {
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", out, name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&storeRef, "store", "", "store id or code")
	cmd.Flags().StringVar(&format, "format", "csv", "file format (csv|xlsx)")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}
