package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/server/middleware"
	"github.com/mamadbah2/restock/internal/service/catalog"
)

// CatalogHandler serves items and stores.
type CatalogHandler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

// NewCatalogHandler constructs the catalog HTTP adapter.
func NewCatalogHandler(svc *catalog.Service, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, logger: logger}
}

type renameRequest struct {
	Name string `json:"name"`
}

type createStoreRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ListItems returns the catalog, filtered by the optional q parameter.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, "list items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetItem returns one item.
func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem adds an item under a unique name.
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req models.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	id, err := h.svc.CreateItem(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, h.logger, "create item", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateItem replaces the editable fields of an item.
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	var req models.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.svc.UpdateItem(c.Request.Context(), middleware.Actor(c), c.Param("id"), req); err != nil {
		respondError(c, h.logger, "update item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RenameItem changes only the name of an item.
func (h *CatalogHandler) RenameItem(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.svc.RenameItem(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Name); err != nil {
		respondError(c, h.logger, "rename item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteItem removes an item and frees its name.
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListStores returns every store.
func (h *CatalogHandler) ListStores(c *gin.Context) {
	stores, err := h.svc.ListStores(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list stores", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

// GetStore returns one store.
func (h *CatalogHandler) GetStore(c *gin.Context) {
	store, err := h.svc.GetStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get store", err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// CreateStore adds a store.
func (h *CatalogHandler) CreateStore(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	store, err := h.svc.CreateStore(c.Request.Context(), middleware.Actor(c), req.Name, req.Code)
	if err != nil {
		respondError(c, h.logger, "create store", err)
		return
	}
	c.JSON(http.StatusCreated, store)
}
