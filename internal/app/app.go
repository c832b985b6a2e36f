// Package app assembles the storage backend and services shared by the
// server and the command line tool.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/config"
	"github.com/mamadbah2/restock/internal/repository"
	"github.com/mamadbah2/restock/internal/repository/memory"
	"github.com/mamadbah2/restock/internal/repository/mongodb"
	"github.com/mamadbah2/restock/internal/service/catalog"
	"github.com/mamadbah2/restock/internal/service/inventory"
	"github.com/mamadbah2/restock/internal/service/orders"
	"github.com/mamadbah2/restock/internal/service/shopping"
	"github.com/mamadbah2/restock/internal/service/users"
)

// Services bundles the domain services over one store.
type Services struct {
	Store     repository.Store
	Catalog   *catalog.Service
	Inventory *inventory.Service
	Orders    *orders.Service
	Shopping  *shopping.Service
	Users     *users.Service
}

// OpenStore connects the backend selected by cfg.Storage.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		return memory.NewStore(logger.Named("repo.memory")), nil
	case config.StorageMongoDB:
		connectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		defer cancel()

		repo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("repo.mongodb"))
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureIndexes(connectCtx); err != nil {
			_ = repo.Close(context.Background())
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewServices wires every domain service over store. notifier and recorder may be nil.
func NewServices(store repository.Store, loc *time.Location, notifier orders.Notifier, recorder orders.Recorder, logger *zap.Logger) *Services {
	return &Services{
		Store:     store,
		Catalog:   catalog.NewService(store, logger.Named("svc.catalog")),
		Inventory: inventory.NewService(store, logger.Named("svc.inventory")),
		Orders:    orders.NewService(store, notifier, recorder, logger.Named("svc.orders")),
		Shopping:  shopping.NewService(store, loc, logger.Named("svc.shopping")),
		Users:     users.NewService(store, logger.Named("svc.users")),
	}
}
