package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/infra/prometheus"
	"github.com/nestline/nestline/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

const (
	rateLimitedMessage = "Rate limit exceeded"
	blacklistedMessage = "IP blacklisted due to abuse"
)

// rateLimitMiddleware gates every API route through the admission ledger.
// Blocked requests never reach a handler, so no storage or broadcast call is
// attempted on their behalf.
type rateLimitMiddleware struct {
	logger             *logrus.Logger
	ledger             *ratelimit.Ledger
	trustedProxyHeader string
	timeProvider       func() time.Time
}

type RateLimitOpts struct {
	TimeProvider func() time.Time
}

func NewRateLimitMiddleware(
	logger *logrus.Logger,
	ledger *ratelimit.Ledger,
	trustedProxyHeader string,
	opts *RateLimitOpts,
) Middleware {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &rateLimitMiddleware{
		logger:             logger,
		ledger:             ledger,
		trustedProxyHeader: trustedProxyHeader,
		timeProvider:       timeProvider,
	}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := func(key string) string { return c.Get(key) }
		identifier := ratelimit.ResolveIdentifier(header, c.IP(), m.trustedProxyHeader)
		outcome := m.ledger.Admit(identifier, m.timeProvider())
		if outcome.Allowed() {
			return c.Next()
		}

		retryAfter := int(math.Ceil(outcome.RetryAfter.Seconds()))
		c.Set("Retry-After", strconv.Itoa(retryAfter))

		message := rateLimitedMessage
		reason := "rate_limited"
		if outcome.Status == ratelimit.StatusBlacklisted {
			message = blacklistedMessage
			reason = "blacklisted"
		}
		prometheus.AdmissionRejections.WithLabelValues(reason).Inc()

		m.logger.WithFields(logrus.Fields{
			"identifier":  identifier,
			"path":        c.Path(),
			"reason":      reason,
			"retry_after": retryAfter,
		}).Debug("request rejected by admission ledger")

		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":      message,
			"retryAfter": retryAfter,
		})
	}
}
