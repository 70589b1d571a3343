package middleware

import (
	"fmt"
	"strconv"
	"time"

	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/apperror"
	"ledgersplit/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules derives per-group limits from the configured base rule.
// Snapshot writes hit PostgreSQL and get a quarter of the budget; backend
// webhooks burst on bulk edits and get five times as much.
func DefaultRateLimitRules(base RateLimitRule) map[string]RateLimitRule {
	quarter := base.Limit / 4
	if quarter < 1 {
		quarter = 1
	}
	return map[string]RateLimitRule{
		"events":    base,
		"compute":   base,
		"snapshots": {Limit: quarter, Window: base.Window},
		"webhooks":  {Limit: base.Limit * 5, Window: base.Window},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
func RateLimiter(limiter ports.RateLimiter, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := extractIdentifier(c)
		key := fmt.Sprintf("%s:%s", identifier, group)

		result, err := limiter.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		// Always set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Abort(c, apperror.ErrRateLimitExceeded())
			return
		}

		c.Next()
	}
}

// extractIdentifier keys authenticated requests by user, the rest by client IP.
func extractIdentifier(c *gin.Context) string {
	if uid := c.GetString(CtxUserID); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.ClientIP()
}
