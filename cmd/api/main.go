package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ledgersplit/config"
	"ledgersplit/internal/adapter/backend"
	httpHandler "ledgersplit/internal/adapter/http/handler"
	"ledgersplit/internal/adapter/http/middleware"
	pgStorage "ledgersplit/internal/adapter/storage/postgres"
	redisStorage "ledgersplit/internal/adapter/storage/redis"
	"ledgersplit/internal/core/ports"
	"ledgersplit/internal/service"
	"ledgersplit/pkg/logger"
	"ledgersplit/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// A local .env is optional; real deployments set LSB_* directly.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(os.Getenv("LSB_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("backend", cfg.Backend.BaseURL).
		Msg("Starting LedgerSplit balance service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare database schema")
	}
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Repositories and stores
	snapshotRepo := pgStorage.NewSnapshotRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	eventCache := redisStorage.NewEventCache(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Event backend
	backendClient := backend.NewClient(
		cfg.Backend.BaseURL,
		&http.Client{Timeout: cfg.Backend.Timeout},
		m,
		logger.Component(log, "backend"),
	)
	source := backend.NewCachedEventSource(backendClient, eventCache, cfg.Cache.EventTTL, m, logger.Component(log, "event_cache"))

	// Core services
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	balanceSvc := service.NewBalanceService(source, cfg.Backend.MaxParallel, m, logger.Component(log, "balance"))
	snapshotSvc := service.NewSnapshotService(balanceSvc, snapshotRepo, cfg.Snapshot.ListLimit, m, logger.Component(log, "snapshot"))
	webhookSvc := service.NewWebhookService(eventCache, m, logger.Component(log, "webhook"))
	auditSvc := service.NewAuditService(auditRepo, log)

	// Snapshot retention
	var scheduler *service.Scheduler
	if cfg.Snapshot.PruneSchedule != "" {
		scheduler, err = service.NewScheduler(snapshotSvc, cfg.Snapshot.PruneSchedule, cfg.Snapshot.Retention, logger.Component(log, "scheduler"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule snapshot pruning")
		}
		scheduler.Start()
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		BalanceSvc:  balanceSvc,
		SnapshotSvc: snapshotSvc,
		WebhookSvc:  webhookSvc,
		TokenSvc:    tokenSvc,
		SigSvc:      sigSvc,
		NonceStore:  nonceStore,
		Webhook: middleware.WebhookAuthConfig{
			Secret:   cfg.Webhook.Secret,
			MaxDrift: cfg.Webhook.MaxDrift,
			NonceTTL: cfg.Webhook.NonceTTL,
		},
		RateLimiter: rateLimitStore,
		RateLimit: middleware.RateLimitRule{
			Limit:  cfg.RateLimit.Requests,
			Window: cfg.RateLimit.Window,
		},
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb),
			backendClient,
		},
		AuditSvc:     auditSvc,
		Metrics:      m,
		Gatherer:     reg,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       log,
	})

	// HTTP Server with graceful shutdown
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Snapshot pruning did not stop in time")
		}
	}

	log.Info().Msg("Server exited")
}
