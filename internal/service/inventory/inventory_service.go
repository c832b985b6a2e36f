package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository"
)

// Service edits the per-store inventory ledger directly.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires an inventory service.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// GetStoreInventory returns the entries recorded for storeID.
func (s *Service) GetStoreInventory(ctx context.Context, storeID string) ([]models.InventoryEntry, error) {
	if err := s.requireStore(ctx, storeID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListInventory(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return entries, nil
}

// SetEntry fully replaces both quantities of one (store, item) pair.
func (s *Service) SetEntry(ctx context.Context, actor *models.Actor, storeID string, in models.EntryInput) error {
	return s.SaveAll(ctx, actor, storeID, []models.EntryInput{in})
}

// SaveAll writes every row in one batch. Rows are validated before anything is written.
func (s *Service) SaveAll(ctx context.Context, actor *models.Actor, storeID string, rows []models.EntryInput) error {
	if err := models.RequireActor(actor); err != nil {
		return err
	}
	if len(rows) == 0 {
		return models.Invalid("entries", "must not be empty")
	}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
	}
	if err := s.requireStore(ctx, storeID); err != nil {
		return err
	}
	for _, row := range rows {
		item, err := s.store.GetItem(ctx, row.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: %s", models.ErrItemNotFound, row.ItemID)
		}
	}

	now := s.now().UTC()
	err := s.store.WriteBatch(ctx, func(ctx context.Context, w repository.Writer) error {
		for _, row := range rows {
			entry := models.NewInventoryEntry(storeID, row.ItemID, models.RoundQty(row.CurrentQty), models.RoundQty(row.MinQty))
			entry.UpdatedAt = now
			entry.UpdatedBy = actor.UserID
			if err := w.PutInventoryEntry(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("inventory saved", zap.String("store_id", storeID), zap.Int("rows", len(rows)), zap.String("actor", actor.UserID))
	return nil
}

// ZeroAll sets the current quantity of every catalog item at the store to
// zero, keeping each minimum.
func (s *Service) ZeroAll(ctx context.Context, actor *models.Actor, storeID string) (int, error) {
	if err := models.RequireActor(actor); err != nil {
		return 0, err
	}
	if err := s.requireStore(ctx, storeID); err != nil {
		return 0, err
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}
	existing, err := s.store.ListInventory(ctx, storeID)
	if err != nil {
		return 0, fmt.Errorf("list inventory: %w", err)
	}
	minByItem := make(map[string]float64, len(existing))
	for _, entry := range existing {
		minByItem[entry.ItemID] = entry.MinQty
	}

	now := s.now().UTC()
	err = s.store.WriteBatch(ctx, func(ctx context.Context, w repository.Writer) error {
		for _, item := range items {
			entry := models.NewInventoryEntry(storeID, item.ID, 0, minByItem[item.ID])
			entry.UpdatedAt = now
			entry.UpdatedBy = actor.UserID
			if err := w.PutInventoryEntry(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("inventory zeroed", zap.String("store_id", storeID), zap.Int("items", len(items)), zap.String("actor", actor.UserID))
	return len(items), nil
}

func (s *Service) requireStore(ctx context.Context, storeID string) error {
	if storeID == "" {
		return models.Invalid("storeId", "must not be blank")
	}
	store, err := s.store.GetStore(ctx, storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return models.ErrStoreNotFound
	}
	return nil
}
