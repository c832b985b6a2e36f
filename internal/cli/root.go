// Package cli implements restockctl, an operator tool that works directly
// against the configured document store.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/restock/internal/app"
	"github.com/mamadbah2/restock/internal/config"
	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/pkg/logger"
)

// Opener builds the services a command runs against. Callers close
// Services.Store when done.
type Opener func(ctx context.Context, opts *RootOptions) (*app.Services, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile  string
	Actor    string
	LogLevel string

	open Opener
}

// NewRootCommand creates the root command. A nil open uses OpenFromEnv.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenFromEnv
	}
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "restockctl",
		Short: "Manage stores, items and orders of the restock service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Actor == "" {
				return errors.New("--actor must not be empty")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "restockctl", "user id recorded on writes")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewStoresCommand(opts))
	cmd.AddCommand(NewItemsCommand(opts))
	cmd.AddCommand(NewShoppingListCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))

	return cmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand(nil).Execute()
}

// OpenFromEnv loads the storage configuration and connects the store.
func OpenFromEnv(ctx context.Context, opts *RootOptions) (*app.Services, error) {
	cfg, err := config.LoadStorage(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Digest.Location()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return app.NewServices(store, loc, nil, nil, log), nil
}

func (o *RootOptions) actor() *models.Actor {
	return &models.Actor{UserID: o.Actor}
}

// withServices opens the services, runs fn and closes the store.
func (o *RootOptions) withServices(ctx context.Context, fn func(*app.Services) error) (err error) {
	svcs, err := o.open(ctx, o)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := svcs.Store.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(svcs)
}

// resolveStore accepts a store id or a store code.
func resolveStore(ctx context.Context, svcs *app.Services, ref string) (models.Store, error) {
	store, err := svcs.Catalog.GetStore(ctx, ref)
	if errors.Is(err, models.ErrStoreNotFound) {
		return svcs.Catalog.FindStoreByCode(ctx, ref)
	}
	return store, err
}
