package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/app"
	"github.com/mamadbah2/restock/internal/config"
	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/metrics"
	"github.com/mamadbah2/restock/internal/repository/sheets"
	"github.com/mamadbah2/restock/internal/scheduler"
	"github.com/mamadbah2/restock/internal/server/handlers"
	"github.com/mamadbah2/restock/internal/server/router"
	commandsvc "github.com/mamadbah2/restock/internal/service/commands"
	"github.com/mamadbah2/restock/internal/service/orders"
	reportingsvc "github.com/mamadbah2/restock/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/restock/internal/service/whatsapp"
	"github.com/mamadbah2/restock/pkg/auth"
	whatsappclient "github.com/mamadbah2/restock/pkg/clients/whatsapp"
	"github.com/mamadbah2/restock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Digest.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	notifier := &deferredNotifier{}
	svcs := app.NewServices(store, loc, notifier, appMetrics, baseLogger)

	var messagingSvc *whatsappsvc.MetaWhatsAppService
	if cfg.WhatsApp.Enabled() {
		dispatcher := commandsvc.NewService(svcs.Catalog, svcs.Shopping, svcs.Orders, loc, baseLogger.Named("svc.commands"))
		messagingSvc = whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsappclient.NewClient(cfg.WhatsApp), dispatcher, baseLogger.Named("svc.whatsapp"))
		notifier.target = messagingSvc
	} else {
		baseLogger.Warn("whatsapp token missing, notifications and chat commands disabled")
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	} else {
		baseLogger.Info("google sheets not configured, publication disabled")
	}
	reportingSvc := reportingsvc.NewService(svcs.Shopping, svcs.Catalog, sheetsRepo, loc, baseLogger.Named("svc.reporting"))

	var sender scheduler.GroupSender
	if messagingSvc != nil {
		sender = messagingSvc
	}
	sched := scheduler.NewScheduler(cfg.Digest.CronSchedule, loc, reportingSvc, sender, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	h := router.Handlers{
		Catalog:   handlers.NewCatalogHandler(svcs.Catalog, baseLogger.Named("handlers.catalog")),
		Inventory: handlers.NewInventoryHandler(svcs.Inventory, baseLogger.Named("handlers.inventory")),
		Orders:    handlers.NewOrderHandler(svcs.Orders, svcs.Catalog, svcs.Shopping, baseLogger.Named("handlers.orders")),
		Shopping:  handlers.NewShoppingHandler(svcs.Shopping, baseLogger.Named("handlers.shopping")),
		Session:   handlers.NewSessionHandler(svcs.Users, baseLogger.Named("handlers.session")),
	}
	if messagingSvc != nil {
		h.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
	}

	engine := router.New(h, router.Options{
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Metrics:  appMetrics,
		Gatherer: registry,
		Logger:   baseLogger.Named("router"),
	})

	// no WriteTimeout: shopping list streams stay open
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// deferredNotifier forwards to target once the messaging service exists;
// the messaging service itself depends on the order service.
type deferredNotifier struct {
	target orders.Notifier
}

func (n *deferredNotifier) OrderStatusChanged(ctx context.Context, detail models.OrderDetail) error {
	if n.target == nil {
		return nil
	}
	return n.target.OrderStatusChanged(ctx, detail)
}
