package middleware

import (
	"context"
	"net/http"
	"strconv"

	"teams-pollbot/internal/redis"
	"teams-pollbot/internal/transport/httpdto"
	"teams-pollbot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookLimiter is the part of redis.RateLimiter the middleware uses.
type WebhookLimiter interface {
	AllowWebhook(ctx context.Context, ip string) (*redis.RateLimitResult, error)
}

var _ WebhookLimiter = (*redis.RateLimiter)(nil)

// WebhookRateLimitMiddleware limits webhook calls per client address. When
// the limiter fails the call is let through and the failure logged.
func WebhookRateLimitMiddleware(limiter WebhookLimiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.AllowWebhook(c.Request.Context(), c.ClientIP())
		if err != nil {
			if l != nil {
				l.WithContext(c.Request.Context()).Warnf("rate limit check skipped: %v", err)
			}
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
