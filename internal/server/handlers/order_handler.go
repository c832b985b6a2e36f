package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/export"
	"github.com/mamadbah2/restock/internal/server/middleware"
	"github.com/mamadbah2/restock/internal/service/catalog"
	"github.com/mamadbah2/restock/internal/service/orders"
	"github.com/mamadbah2/restock/internal/service/shopping"
)

// OrderHandler serves the purchase order lifecycle.
type OrderHandler struct {
	orders   *orders.Service
	catalog  *catalog.Service
	shopping *shopping.Service
	logger   *zap.Logger
}

// NewOrderHandler constructs the order HTTP adapter.
func NewOrderHandler(orderSvc *orders.Service, catalogSvc *catalog.Service, shoppingSvc *shopping.Service, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{orders: orderSvc, catalog: catalogSvc, shopping: shoppingSvc, logger: logger}
}

// createOrderRequest is optional; without lines the current shopping list is used.
type createOrderRequest struct {
	Lines *[]models.ShoppingLine `json:"lines"`
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// List returns the orders of a store, newest first.
func (h *OrderHandler) List(c *gin.Context) {
	list, err := h.orders.ListOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// Create snapshots lines into a new draft order.
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	actor := middleware.Actor(c)

	var (
		id  string
		err error
	)
	if req.Lines == nil {
		id, err = h.orders.CreateFromShoppingList(ctx, actor, c.Param("id"))
	} else {
		var store models.Store
		store, err = h.catalog.GetStore(ctx, c.Param("id"))
		if err == nil {
			id, err = h.orders.CreateOrder(ctx, actor, store, *req.Lines)
		}
	}
	if err != nil {
		respondError(c, h.logger, "create order", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Get returns the order header, its lines and the total to buy.
func (h *OrderHandler) Get(c *gin.Context) {
	detail, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get order", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// SetStatus moves an order between draft and sent.
func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.orders.SetStatus(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Status); err != nil {
		respondError(c, h.logger, "set order status", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Receive folds the order into inventory. Receiving twice is a no-op.
func (h *OrderHandler) Receive(c *gin.Context) {
	applied, err := h.orders.ReceiveOrder(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "receive order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// Export downloads the order lines as CSV or XLSX.
func (h *OrderHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, h.logger, "export order", err)
		return
	}

	ctx := c.Request.Context()
	detail, err := h.orders.GetOrder(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "export order", err)
		return
	}

	var buf bytes.Buffer
	name, err := h.shopping.ExportOrder(ctx, detail, format, &buf)
	if err != nil {
		respondError(c, h.logger, "export order", err)
		return
	}
	attachment(c, name, format, buf.Bytes())
}

func attachment(c *gin.Context, name string, format export.Format, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, format.ContentType(), body)
}
