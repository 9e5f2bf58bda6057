package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/ai"
	httptransport "github.com/spec-kit/ticketflow/internal/api/http"
	"github.com/spec-kit/ticketflow/internal/api/http/handlers"
	"github.com/spec-kit/ticketflow/internal/auth"
	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/events"
	"github.com/spec-kit/ticketflow/internal/observability"
	"github.com/spec-kit/ticketflow/internal/service"
	"github.com/spec-kit/ticketflow/internal/store"
	"github.com/spec-kit/ticketflow/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, pinger, closeKV, err := buildKV(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init snapshot backend", zap.Error(err))
	}
	defer closeKV()

	snapshots := store.NewSnapshotStore(kv, cfg.Store, logger)
	dispatcher := events.NewInMemoryDispatcher()

	lifecycle, err := service.NewLifecycleService(ctx, snapshots, dispatcher, logger)
	if err != nil {
		logger.Fatal("failed to load snapshot", zap.Error(err))
	}
	transfer := service.NewTransferService(lifecycle)

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notifications)

	adminHash := cfg.Auth.AdminPasswordHash
	if adminHash == "" {
		adminHash, err = auth.HashPassword(cfg.Auth.AdminPassword, cfg.Auth.BcryptCost)
		if err != nil {
			logger.Fatal("failed to hash admin password", zap.Error(err))
		}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)
	advisor := ai.NewAdvisor(cfg.AI, logger)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pinger),
		Session:        handlers.NewSessionHandler(tokens, lifecycle, adminHash),
		Tickets:        handlers.NewTicketsHandler(lifecycle, advisor),
		Users:          handlers.NewUsersHandler(lifecycle),
		Subjects:       handlers.NewSubjectsHandler(lifecycle),
		Data:           handlers.NewDataHandler(transfer),
		Settings:       handlers.NewSettingsHandler(snapshots),
		Advisory:       handlers.NewAdvisoryHandler(advisor, snapshots),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildKV selects the snapshot backend from configuration.
func buildKV(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.KV, handlers.Pinger, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		kv := store.NewRedisKV(cfg.Redis, logger)
		return kv, kv, kv.Close, nil
	case "postgres":
		kv, err := store.NewPostgresKV(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, kv, kv.Close, nil
	default:
		logger.Warn("using in-memory snapshot backend; data is not durable")
		return store.NewMemoryKV(), nil, func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
