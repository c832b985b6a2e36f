package shopping

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/export"
	"github.com/mamadbah2/restock/internal/repository"
)

// Service derives shopping lists from the catalog and a store's inventory.
type Service struct {
	store    repository.Store
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

// NewService wires a shopping list service. loc sets the date used in export file names.
func NewService(store repository.Store, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, logger: logger, location: loc, now: time.Now}
}

// ForStore returns the current shopping list of storeID.
func (s *Service) ForStore(ctx context.Context, storeID string) (models.ShoppingList, error) {
	store, items, err := s.loadCatalog(ctx, storeID)
	if err != nil {
		return models.ShoppingList{}, err
	}

	inventory, err := s.store.ListInventory(ctx, storeID)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("list inventory: %w", err)
	}

	return models.ShoppingList{Store: store, Lines: models.DeriveShoppingList(items, inventory)}, nil
}

// Export writes the shopping list of storeID and returns the download file name.
func (s *Service) Export(ctx context.Context, storeID string, format export.Format, w io.Writer) (string, error) {
	list, err := s.ForStore(ctx, storeID)
	if err != nil {
		return "", err
	}

	if err := export.Write(w, format, list.Store.Code, export.ShoppingRows(list.Lines)); err != nil {
		return "", fmt.Errorf("export shopping list: %w", err)
	}
	return export.ShoppingListFilename(list.Store.Code, s.now().In(s.location), format), nil
}

// ExportOrder writes the lines of orderID, enriched with supplier and buyer
// from the current catalog, and returns the download file name.
func (s *Service) ExportOrder(ctx context.Context, detail models.OrderDetail, format export.Format, w io.Writer) (string, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return "", fmt.Errorf("list items: %w", err)
	}
	catalog := make(map[string]models.Item, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}

	if err := export.Write(w, format, detail.Order.StoreCode, export.OrderRows(detail.Lines, catalog)); err != nil {
		return "", fmt.Errorf("export order: %w", err)
	}
	return export.OrderFilename(detail.Order.StoreCode, detail.Order.ID, s.now().In(s.location), format), nil
}

// Watch emits the full shopping list of storeID now and again after every
// inventory change, until ctx is done or the subscription drops. The catalog
// is read once when the feed starts.
func (s *Service) Watch(ctx context.Context, storeID string) (<-chan []models.ShoppingLine, error) {
	store, items, err := s.loadCatalog(ctx, storeID)
	if err != nil {
		return nil, err
	}

	// subscribe before the snapshot so no write falls between the two
	changes, err := s.store.WatchInventory(ctx, storeID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.store.ListInventory(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	out := make(chan []models.ShoppingLine, 1)
	go func() {
		defer close(out)

		state := models.NewInventoryState(store.ID, snapshot)
		if !send(ctx, out, models.DeriveShoppingList(items, state.Entries())) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-changes:
				if !ok {
					s.logger.Debug("inventory subscription closed", zap.String("store_id", storeID))
					return
				}
				state = models.ApplyInventoryChange(state, change)
				if !send(ctx, out, models.DeriveShoppingList(items, state.Entries())) {
					return
				}
			}
		}
	}()

	return out, nil
}

func send(ctx context.Context, out chan<- []models.ShoppingLine, lines []models.ShoppingLine) bool {
	select {
	case out <- lines:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Service) loadCatalog(ctx context.Context, storeID string) (models.Store, []models.Item, error) {
	store, err := s.store.GetStore(ctx, storeID)
	if err != nil {
		return models.Store{}, nil, err
	}
	if store == nil {
		return models.Store{}, nil, models.ErrStoreNotFound
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return models.Store{}, nil, fmt.Errorf("list items: %w", err)
	}
	return *store, items, nil
}
