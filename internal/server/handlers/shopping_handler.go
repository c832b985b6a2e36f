package handlers

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/export"
	"github.com/mamadbah2/restock/internal/service/shopping"
)

const keepAliveInterval = 25 * time.Second

// ShoppingHandler serves derived shopping lists.
type ShoppingHandler struct {
	svc       *shopping.Service
	logger    *zap.Logger
	keepAlive time.Duration
}

// NewShoppingHandler constructs the shopping list HTTP adapter.
func NewShoppingHandler(svc *shopping.Service, logger *zap.Logger) *ShoppingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShoppingHandler{svc: svc, logger: logger, keepAlive: keepAliveInterval}
}

// Get returns the current shopping list of a store.
func (h *ShoppingHandler) Get(c *gin.Context) {
	list, err := h.svc.ForStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get shopping list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Export downloads the shopping list as CSV or XLSX.
func (h *ShoppingHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, h.logger, "export shopping list", err)
		return
	}

	var buf bytes.Buffer
	name, err := h.svc.Export(c.Request.Context(), c.Param("id"), format, &buf)
	if err != nil {
		respondError(c, h.logger, "export shopping list", err)
		return
	}
	attachment(c, name, format, buf.Bytes())
}

// Stream pushes the full shopping list as a server-sent event on every
// inventory change of the store.
func (h *ShoppingHandler) Stream(c *gin.Context) {
	storeID := c.Param("id")
	feed, err := h.svc.Watch(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, h.logger, "watch shopping list", err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	h.logger.Debug("shopping list stream opened", zap.String("store_id", storeID))
	c.Stream(func(w io.Writer) bool {
		select {
		case lines, ok := <-feed:
			if !ok {
				return false
			}
			c.SSEvent("shopping-list", lines)
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
	h.logger.Debug("shopping list stream closed", zap.String("store_id", storeID))
}
