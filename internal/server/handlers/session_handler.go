package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/server/middleware"
	"github.com/mamadbah2/restock/internal/service/users"
)

// SessionHandler records sign-ins.
type SessionHandler struct {
	svc    *users.Service
	logger *zap.Logger
}

// NewSessionHandler constructs the session HTTP adapter.
func NewSessionHandler(svc *users.Service, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{svc: svc, logger: logger}
}

// Start ensures the caller has a user profile.
func (h *SessionHandler) Start(c *gin.Context) {
	actor := middleware.Actor(c)
	created, err := h.svc.EnsureUserProfile(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, "ensure user profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uid": actor.UserID, "email": actor.Email, "created": created})
}
