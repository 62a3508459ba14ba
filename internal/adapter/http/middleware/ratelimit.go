package middleware

import (
	"fmt"
	"strconv"
	"time"

	redisStore "crux-escrow/internal/adapter/storage/redis"
	"crux-escrow/pkg/apperror"
	"crux-escrow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the default rate limits per endpoint group.
// Fund-moving groups are kept tighter than read-only views.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"auth_register":  {Limit: 5, Window: time.Hour},
		"auth_login":     {Limit: 10, Window: time.Minute},
		"escrows":        {Limit: 30, Window: time.Minute},
		"escrow_resolve": {Limit: 30, Window: time.Minute},
		"views":          {Limit: 60, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := extractIdentifier(c)
		key := fmt.Sprintf("%s:%s", identifier, group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
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
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier determines the rate limit key source: the authenticated
// account when present, otherwise the client IP.
func extractIdentifier(c *gin.Context) string {
	if aid, exists := c.Get(CtxAccountID); exists {
		if id, ok := aid.(uuid.UUID); ok {
			return id.String()
		}
	}
	return c.ClientIP()
}
