package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository"
)

// CreateStore registers a store. The code is stored upper-cased.
func (s *Service) CreateStore(ctx context.Context, actor *models.Actor, name, code string) (models.Store, error) {
	if err := models.RequireActor(actor); err != nil {
		return models.Store{}, err
	}

	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case name == "":
		return models.Store{}, models.Invalid("name", "must not be blank")
	case code == "":
		return models.Store{}, models.Invalid("code", "must not be blank")
	}

	store := models.Store{
		ID:        s.newID(),
		Name:      name,
		Code:      code,
		CreatedAt: s.now().UTC(),
		CreatedBy: actor.UserID,
	}
	err := s.store.WriteBatch(ctx, func(ctx context.Context, w repository.Writer) error {
		return w.PutStore(ctx, store)
	})
	if err != nil {
		return models.Store{}, err
	}

	s.logger.Info("store created", zap.String("store_id", store.ID), zap.String("code", code))
	return store, nil
}

// GetStore returns one store or ErrStoreNotFound.
func (s *Service) GetStore(ctx context.Context, id string) (models.Store, error) {
	store, err := s.store.GetStore(ctx, id)
	if err != nil {
		return models.Store{}, err
	}
	if store == nil {
		return models.Store{}, models.ErrStoreNotFound
	}
	return *store, nil
}

// FindStoreByCode matches code case-insensitively.
func (s *Service) FindStoreByCode(ctx context.Context, code string) (models.Store, error) {
	stores, err := s.ListStores(ctx)
	if err != nil {
		return models.Store{}, err
	}
	for _, store := range stores {
		if strings.EqualFold(store.Code, strings.TrimSpace(code)) {
			return store, nil
		}
	}
	return models.Store{}, models.ErrStoreNotFound
}

// ListStores returns every store sorted by name.
func (s *Service) ListStores(ctx context.Context) ([]models.Store, error) {
	stores, err := s.store.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}
