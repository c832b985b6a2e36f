package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/server/middleware"
	"github.com/mamadbah2/restock/internal/service/inventory"
)

// InventoryHandler serves the stock levels of a store.
type InventoryHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewInventoryHandler constructs the inventory HTTP adapter.
func NewInventoryHandler(svc *inventory.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

type entryRequest struct {
	CurrentQty *float64 `json:"currentQty"`
	MinQty     *float64 `json:"minQty"`
}

type saveAllRequest struct {
	Entries []models.EntryInput `json:"entries"`
}

// List returns every inventory entry of the store.
func (h *InventoryHandler) List(c *gin.Context) {
	entries, err := h.svc.GetStoreInventory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "list inventory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// SetEntry replaces both quantities of one item.
func (h *InventoryHandler) SetEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.CurrentQty == nil || req.MinQty == nil {
		respondError(c, h.logger, "set inventory entry", models.Invalid("quantities", "currentQty and minQty are required"))
		return
	}

	in := models.EntryInput{ItemID: c.Param("itemId"), CurrentQty: *req.CurrentQty, MinQty: *req.MinQty}
	if err := h.svc.SetEntry(c.Request.Context(), middleware.Actor(c), c.Param("id"), in); err != nil {
		respondError(c, h.logger, "set inventory entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveAll writes every row of the request in one batch.
func (h *InventoryHandler) SaveAll(c *gin.Context) {
	var req saveAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.svc.SaveAll(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Entries); err != nil {
		respondError(c, h.logger, "save inventory", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ZeroAll sets every current quantity of the store to zero.
func (h *InventoryHandler) ZeroAll(c *gin.Context) {
	n, err := h.svc.ZeroAll(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "zero inventory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
