package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository"
)

// Service owns items, their unique-name index, and stores.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires a catalog service.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// CreateItem adds an item and reserves its normalized name in one transaction.
func (s *Service) CreateItem(ctx context.Context, actor *models.Actor, in models.ItemInput) (string, error) {
	if err := models.RequireActor(actor); err != nil {
		return "", err
	}
	in, err := in.Clean()
	if err != nil {
		return "", err
	}

	key := models.NormalizeName(in.Name)
	id := s.newID()

	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		existing, err := tx.GetNameIndex(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return models.ErrDuplicateName
		}

		now := s.now().UTC()
		item := models.Item{
			ID:        id,
			Name:      in.Name,
			Unit:      in.Unit,
			Supplier:  in.Supplier,
			Buyer:     in.Buyer,
			CreatedAt: now,
			CreatedBy: actor.UserID,
			UpdatedAt: now,
		}
		if err := tx.PutItem(ctx, item); err != nil {
			return err
		}
		return tx.PutNameIndex(ctx, models.NameIndexEntry{Key: key, ItemID: id, CreatedAt: now})
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("item created", zap.String("item_id", id), zap.String("name_key", key), zap.String("actor", actor.UserID))
	return id, nil
}

// RenameItem changes only the name of an item.
func (s *Service) RenameItem(ctx context.Context, actor *models.Actor, id, newName string) error {
	return s.mutateItem(ctx, actor, id, func(item models.Item) models.ItemInput {
		return models.ItemInput{Name: newName, Unit: item.Unit, Supplier: item.Supplier, Buyer: item.Buyer}
	})
}

// UpdateItem replaces every editable field of an item, moving the name index
// when the normalized name changes.
func (s *Service) UpdateItem(ctx context.Context, actor *models.Actor, id string, in models.ItemInput) error {
	return s.mutateItem(ctx, actor, id, func(models.Item) models.ItemInput { return in })
}

func (s *Service) mutateItem(ctx context.Context, actor *models.Actor, id string, edit func(models.Item) models.ItemInput) error {
	if err := models.RequireActor(actor); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return models.Invalid("id", "must not be blank")
	}

	var oldKey, newKey string
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		item, err := tx.GetItem(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return models.ErrItemNotFound
		}

		in, err := edit(*item).Clean()
		if err != nil {
			return err
		}

		now := s.now().UTC()
		oldKey = models.NormalizeName(item.Name)
		newKey = models.NormalizeName(in.Name)

		if oldKey != newKey {
			taken, err := tx.GetNameIndex(ctx, newKey)
			if err != nil {
				return err
			}
			if taken != nil && taken.ItemID != id {
				return models.ErrDuplicateName
			}

			current, err := tx.GetNameIndex(ctx, oldKey)
			if err != nil {
				return err
			}
			if current != nil && current.ItemID == id {
				if err := tx.DeleteNameIndex(ctx, oldKey); err != nil {
					return err
				}
			}
			if err := tx.PutNameIndex(ctx, models.NameIndexEntry{Key: newKey, ItemID: id, UpdatedAt: now}); err != nil {
				return err
			}
		}

		item.Name = in.Name
		item.Unit = in.Unit
		item.Supplier = in.Supplier
		item.Buyer = in.Buyer
		item.UpdatedAt = now
		return tx.PutItem(ctx, *item)
	})
	if err != nil {
		return err
	}

	if oldKey != newKey {
		s.logger.Info("item renamed", zap.String("item_id", id), zap.String("from", oldKey), zap.String("to", newKey))
	}
	return nil
}

// DeleteItem removes an item together with its name index record.
func (s *Service) DeleteItem(ctx context.Context, actor *models.Actor, id string) error {
	if err := models.RequireActor(actor); err != nil {
		return err
	}

	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		item, err := tx.GetItem(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return models.ErrItemNotFound
		}

		key := models.NormalizeName(item.Name)
		idx, err := tx.GetNameIndex(ctx, key)
		if err != nil {
			return err
		}
		if idx != nil && idx.ItemID == id {
			if err := tx.DeleteNameIndex(ctx, key); err != nil {
				return err
			}
		}
		return tx.DeleteItem(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("item deleted", zap.String("item_id", id), zap.String("actor", actor.UserID))
	return nil
}

// GetItem returns one item or ErrItemNotFound.
func (s *Service) GetItem(ctx context.Context, id string) (models.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if item == nil {
		return models.Item{}, models.ErrItemNotFound
	}
	return *item, nil
}

// ListItems returns the catalog, filtered by query when it is not blank.
func (s *Service) ListItems(ctx context.Context, query string) ([]models.Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if strings.TrimSpace(query) == "" {
		return items, nil
	}

	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if item.MatchesSearch(query) {
			out = append(out, item)
		}
	}
	return out, nil
}
