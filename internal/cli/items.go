package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/restock/internal/app"
	"github.com/mamadbah2/restock/internal/domain/models"
)

// NewItemsCommand groups catalog administration.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage catalog items",
	}
	cmd.AddCommand(newItemsCreateCommand(rootOpts))
	return cmd
}

func newItemsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var in models.ItemInput

	cmd := &cobra.Command{
		Use:          "create",
		Short:        "Add an item to the catalog",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withServices(cmd.Context(), func(svcs *app.Services) error {
				id, err := svcs.Catalog.CreateItem(cmd.Context(), rootOpts.actor(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created item %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "item name")
	cmd.Flags().StringVar(&in.Unit, "unit", "", "unit of measure, e.g. kg")
	cmd.Flags().StringVar(&in.Supplier, "supplier", "", "usual supplier")
	cmd.Flags().StringVar(&in.Buyer, "buyer", "", "person responsible for buying")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("unit")

	return cmd
}
