package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"folio/api/apperr"
	"folio/api/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Limiter decides whether a client key may proceed.
type Limiter interface {
	Allow(key string) bool
	Remaining(key string) int
	ResetAt(key string) (time.Time, bool)
	Limit() int
}

const rateLimitedMessage = "Too many requests. Please try again later."

// RateLimit rejects requests over the limiter's budget with 429 before the
// handler parses anything. Clients are keyed by c.ClientIP(), which only
// follows X-Forwarded-For from the router's trusted proxies.
func RateLimit(limiter Limiter, m *metrics.Metrics, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed := limiter.Allow(ip)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(ip)))
		if allowed {
			c.Next()
			return
		}

		if resetAt, ok := limiter.ResetAt(ip); ok {
			secs := int(math.Ceil(time.Until(resetAt).Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
		}
		m.RateLimitedTotal.WithLabelValues(c.FullPath()).Inc()
		log.WithFields(logrus.Fields{"ip": ip, "route": c.FullPath()}).Warn("rate limit exceeded")
		abort(c, fmt.Errorf("%w: %s", apperr.ErrRateLimited, ip), rateLimitedMessage)
	}
}
