package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/metrics"
	"github.com/mamadbah2/restock/internal/server/handlers"
	"github.com/mamadbah2/restock/internal/server/middleware"
)

// Handlers groups the HTTP adapters. Webhook is nil when WhatsApp is disabled.
type Handlers struct {
	Catalog   *handlers.CatalogHandler
	Inventory *handlers.InventoryHandler
	Orders    *handlers.OrderHandler
	Shopping  *handlers.ShoppingHandler
	Session   *handlers.SessionHandler
	Webhook   *handlers.WebhookHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	Verifier middleware.TokenVerifier
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ZapLogger(logger))
	r.Use(middleware.Prometheus(opts.Metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	api := r.Group("/api", middleware.Authenticate(opts.Verifier, logger))
	{
		api.POST("/session", h.Session.Start)

		api.GET("/items", h.Catalog.ListItems)
		api.POST("/items", h.Catalog.CreateItem)
		api.GET("/items/:id", h.Catalog.GetItem)
		api.PUT("/items/:id", h.Catalog.UpdateItem)
		api.PATCH("/items/:id/name", h.Catalog.RenameItem)
		api.DELETE("/items/:id", h.Catalog.DeleteItem)

		api.GET("/stores", h.Catalog.ListStores)
		api.POST("/stores", h.Catalog.CreateStore)
		api.GET("/stores/:id", h.Catalog.GetStore)

		api.GET("/stores/:id/inventory", h.Inventory.List)
		api.PUT("/stores/:id/inventory", h.Inventory.SaveAll)
		api.PUT("/stores/:id/inventory/:itemId", h.Inventory.SetEntry)
		api.POST("/stores/:id/inventory/zero", h.Inventory.ZeroAll)

		api.GET("/stores/:id/shopping-list", h.Shopping.Get)
		api.GET("/stores/:id/shopping-list/export", h.Shopping.Export)
		api.GET("/stores/:id/shopping-list/stream", h.Shopping.Stream)

		api.GET("/stores/:id/orders", h.Orders.List)
		api.POST("/stores/:id/orders", h.Orders.Create)
		api.GET("/orders/:id", h.Orders.Get)
		api.PATCH("/orders/:id/status", h.Orders.SetStatus)
		api.POST("/orders/:id/receive", h.Orders.Receive)
		api.GET("/orders/:id/export", h.Orders.Export)

		if h.Webhook != nil {
			api.POST("/messages", h.Webhook.SendMessage)
		}
	}

	logger.Info("router initialized")

	return r
}
