package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/restock/internal/app"
)

// NewStoresCommand groups store administration.
func NewStoresCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List and create stores",
	}
	cmd.AddCommand(newStoresListCommand(rootOpts))
	cmd.AddCommand(newStoresCreateCommand(rootOpts))
	return cmd
}

func newStoresListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List every store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withServices(cmd.Context(), func(svcs *app.Services) error {
				stores, err := svcs.Catalog.ListStores(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCODE\tNAME")
				for _, s := range stores {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Code, s.Name)
				}
				return tw.Flush()
			})
		},
	}
}

func newStoresCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, code string

	cmd := &cobra.Command{
		Use:          "create",
		Short:        "Create a store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withServices(cmd.Context(), func(svcs *app.Services) error {
				store, err := svcs.Catalog.CreateStore(cmd.Context(), rootOpts.actor(), name, code)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created store %s (%s)\n", store.ID, store.Code)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "store name")
	cmd.Flags().StringVar(&code, "code", "", "short store code, stored upper-cased")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}
