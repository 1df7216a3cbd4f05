package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/asset-maintenance/internal/api/http"
	"github.com/spec-kit/asset-maintenance/internal/api/http/handlers"
	"github.com/spec-kit/asset-maintenance/internal/auth"
	"github.com/spec-kit/asset-maintenance/internal/config"
	"github.com/spec-kit/asset-maintenance/internal/events"
	"github.com/spec-kit/asset-maintenance/internal/observability"
	"github.com/spec-kit/asset-maintenance/internal/persistence"
	"github.com/spec-kit/asset-maintenance/internal/repository"
	"github.com/spec-kit/asset-maintenance/internal/repository/memory"
	"github.com/spec-kit/asset-maintenance/internal/service"
	"github.com/spec-kit/asset-maintenance/internal/storage"
	"github.com/spec-kit/asset-maintenance/internal/worker"
)

func newServeCmd() *cobra.Command {
	var (
		migrate  bool
		seedDemo bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate, seedDemo)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply SQL migrations before serving (also POSTGRES_RUN_MIGRATIONS)")
	cmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "seed demo users and assets into the in-memory store")
	return cmd
}

func runServe(parent context.Context, migrate, seedDemo bool) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if migrate || cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var store repository.Store
	if pg.Enabled() {
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		mem := memory.NewStore()
		if seedDemo {
			memory.SeedDemo(mem)
			logger.Info("seeded demo data", zap.String("requester_id", memory.DemoRequesterID), zap.String("asset_id", memory.DemoAssetID))
		}
		store = mem
	}

	var files storage.FileStore = storage.NewMemoryStore()
	if cfg.Storage.Enabled() {
		minioStore, err := storage.NewMinioStore(ctx, cfg.Storage, logger)
		if err != nil {
			return fmt.Errorf("connect object storage: %w", err)
		}
		files = minioStore
	} else {
		logger.Warn("STORAGE_MINIO_ENDPOINT not provided; photos kept in memory")
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	metrics.ObserveEvents(dispatcher)

	var forwarder *events.RedisForwarder
	if redis.Enabled() {
		forwarder = events.NewRedisForwarder(redis.Client, cfg.Redis.EventsChannel)
	}
	notifications := service.NewNotificationService(dispatcher, store, logger.Named("notifications"), cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notifications, forwarder)

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:        store,
		Synchronizer: service.NewSynchronizer(logger.Named("sync")),
		Ledger:       service.NewLedger(logger.Named("ledger")),
		Dispatcher:   dispatcher,
		Logger:       logger.Named("tickets"),
	})
	counterService := service.NewCounterService(store)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout(),
		BodyLimitMB:    cfg.Storage.MaxUploadMB * 4,
		Routes: httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
			Tickets:        handlers.NewTicketsHandler(ticketService, counterService),
			Uploads:        handlers.NewUploadsHandler(files, cfg.Storage.MaxUploadMB, logger),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Repos().Users),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-waitForSignal():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}
	return app.Shutdown()
}

func waitForSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
