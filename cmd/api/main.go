package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetingease_backend/internal/agents"
	"meetingease_backend/internal/auth"
	"meetingease_backend/internal/auth/revocation"
	authservice "meetingease_backend/internal/auth/service"
	"meetingease_backend/internal/clients"
	"meetingease_backend/internal/deals"
	"meetingease_backend/internal/email"
	"meetingease_backend/internal/geocode"
	apphttp "meetingease_backend/internal/http"
	"meetingease_backend/internal/http/router"
	"meetingease_backend/internal/meetings"
	"meetingease_backend/internal/notification"
	"meetingease_backend/internal/scheduler"
	"meetingease_backend/internal/storage"
	"meetingease_backend/migrations"
	"meetingease_backend/platform/config"
	"meetingease_backend/platform/db"
	"meetingease_backend/platform/events"
	"meetingease_backend/platform/httpkit"
	"meetingease_backend/platform/logger"
	"meetingease_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	revocationStore, tokenRevoker, serviceRevoker := initRevocation(cfg, log)
	if revocationStore != nil {
		defer func() { _ = revocationStore.Close() }()
	}

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender := email.NewSender(cfg)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for profile photo uploads (MinIO)
	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure profile photo bucket", 5, 2*time.Second, func() error {
			return minioSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketProfilePhotos())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketProfilePhotos())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		storageSvc = minioSvc
		log.Info("storage service initialized", "profilePhotosBucket", cfg.GetMinioBucketProfilePhotos())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; profile photo uploads disabled")
	}

	// Address resolution against OSM Nominatim
	geocoder := geocode.NewService(cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, log)
	notificationModule.RegisterHandlers(eventBus)

	authModule := auth.NewModule(pool, serviceRevoker, sender, cfg, val, log)
	clientsModule := clients.NewModule(pool, storageSvc, cfg.GetMinioBucketProfilePhotos(), authModule.Service(), val, log)
	agentsModule := agents.NewModule(pool)
	dealsModule := deals.NewModule(pool)
	meetingsModule := meetings.NewModule(pool, geocoder, reminderScheduler, eventBus, cfg, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:       cfg,
		Logger:       log,
		Health:       db.NewPoolAdapter(pool),
		EventBus:     eventBus,
		TokenRevoker: tokenRevoker,
		Modules: []apphttp.Module{
			authModule,
			clientsModule,
			agentsModule,
			dealsModule,
			meetingsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRevocation connects the redis-backed jti blacklist. Without redis the
// app still runs; logout then only rotates the refresh token.
func initRevocation(cfg config.RedisConfig, log *logger.Logger) (*revocation.Store, httpkit.TokenRevoker, authservice.Revoker) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; access token revocation disabled")
		return nil, nil, nil
	}

	store, err := revocation.NewStore(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to initialize token revocation store", "error", err)
		return nil, nil, nil
	}

	return store, store, store
}

func initReminderScheduler(cfg config.RedisConfig, log *logger.Logger) (scheduler.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; meeting reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
