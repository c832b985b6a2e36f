package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrDuplicateName), errors.Is(err, models.ErrOrderFinalized):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrEmptyOrder):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrOrderNotFound), errors.Is(err, models.ErrItemNotFound), errors.Is(err, models.ErrStoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	msg := err.Error()

	switch {
	case status == http.StatusInternalServerError:
		logger.Error(op+" failed", zap.Error(err))
		msg = "internal error"
	case status >= http.StatusInternalServerError:
		logger.Error(op+" failed", zap.Error(err))
		msg = models.ErrStorageUnavailable.Error()
	default:
		logger.Warn(op+" rejected", zap.Int("status", status), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
