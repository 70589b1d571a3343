package handler

import (
	"ledgersplit/internal/adapter/http/middleware"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	BalanceSvc     ports.BalanceService
	SnapshotSvc    ports.SnapshotService // nil = snapshot history disabled
	WebhookSvc     ports.WebhookService
	TokenSvc       ports.TokenService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore
	Webhook        middleware.WebhookAuthConfig
	RateLimiter    ports.RateLimiter // nil = rate limiting disabled
	RateLimit      middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer // nil = no /metrics endpoint
	MaxBodyBytes   int64
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.MaxBodySize(deps.MaxBodyBytes))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep: verifies PostgreSQL, Redis and the backend)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	rules := middleware.DefaultRateLimitRules(deps.RateLimit)

	// Helper: return rate limiter middleware if a limiter is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimiter == nil || !ok || rule.Limit <= 0 {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- HMAC-authenticated backend webhooks ---
	webhookAuth := middleware.WebhookAuth(deps.Webhook, deps.SigSvc, deps.NonceStore, deps.Logger)
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	v1.POST("/webhooks/backend", rl("webhooks"), webhookAuth, webhookHandler.Receive)

	// --- JWT-authenticated routes (dashboard) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	balanceHandler := NewBalanceHandler(deps.BalanceSvc)

	events := v1.Group("/events", jwtAuth)
	{
		events.GET("", rl("events"), balanceHandler.ListEvents)
		events.GET("/:id/balances", rl("events"), balanceHandler.GetBalances)
		events.GET("/:id/settlement", rl("events"), balanceHandler.GetSettlement)

		if deps.SnapshotSvc != nil {
			snapshotHandler := NewSnapshotHandler(deps.SnapshotSvc)
			events.POST("/:id/snapshots", rl("snapshots"), snapshotHandler.Record)
			events.GET("/:id/snapshots", rl("events"), snapshotHandler.List)
		}
	}

	balances := v1.Group("/balances", jwtAuth)
	{
		balances.POST("/compute", rl("compute"), balanceHandler.Compute)
	}

	return r
}
