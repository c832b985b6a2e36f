package users

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
)

// ProfileStore upserts user profiles.
type ProfileStore interface {
	TouchUser(ctx context.Context, uid, email string, at time.Time) (bool, error)
}

// Service keeps the users collection in step with sign-ins.
type Service struct {
	store  ProfileStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a user profile service.
func NewService(store ProfileStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// EnsureUserProfile creates the profile of actor on first sign-in and
// refreshes its last login time afterwards. It reports whether the profile is new.
func (s *Service) EnsureUserProfile(ctx context.Context, actor *models.Actor) (bool, error) {
	if err := models.RequireActor(actor); err != nil {
		return false, err
	}

	created, err := s.store.TouchUser(ctx, actor.UserID, actor.Email, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("touch user: %w", err)
	}

	if created {
		s.logger.Info("user profile created", zap.String("uid", actor.UserID))
	}
	return created, nil
}
