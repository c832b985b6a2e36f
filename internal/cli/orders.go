package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/restock/internal/app"
)

// NewOrdersCommand groups order operations.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Operate on purchase orders",
	}
	cmd.AddCommand(newOrdersReceiveCommand(rootOpts))
	return cmd
}

func newOrdersReceiveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "receive <order-id>",
		Short:        "Mark an order received and add its lines to the store inventory",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withServices(cmd.Context(), func(svcs *app.Services) error {
				applied, err := svcs.Orders.ReceiveOrder(cmd.Context(), rootOpts.actor(), args[0])
				if err != nil {
					return err
				}
				if applied {
					fmt.Fprintf(cmd.OutOrStdout(), "order %s received\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "order %s was already received\n", args[0])
				}
				return nil
			})
		},
	}
}
