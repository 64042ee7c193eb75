package http

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/infra/prometheus"
	"github.com/nestline/nestline/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

type blacklistedIP struct {
	IP            string `json:"ip"`
	BlacklistedAt int64  `json:"blacklistedAt"`
	TimeRemaining int    `json:"timeRemaining"`
	RequestCount  int    `json:"requestCount"`
}

type listBlacklistHandler struct {
	logger       *logrus.Logger
	ledger       *ratelimit.Ledger
	timeProvider func() time.Time
}

func NewListBlacklistHandler(logger *logrus.Logger, ledger *ratelimit.Ledger, timeProvider func() time.Time) Handler {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &listBlacklistHandler{
		logger:       logger,
		ledger:       ledger,
		timeProvider: timeProvider,
	}
}

// Handle @Summary List blacklisted identifiers
// @Description Returns identifiers under an active penalty with remaining time
// @Tags Admin
// @Param Authorization header string true "Authorization token"
// @Produce json
// @Success 200 {object} map[string]interface{} "Blacklisted identifiers"
// @Router /api/admin/blacklist [get]
func (h *listBlacklistHandler) Handle(c *fiber.Ctx) error {
	entries := h.ledger.ListBlacklisted(h.timeProvider())

	ips := make([]blacklistedIP, 0, len(entries))
	for _, e := range entries {
		ips = append(ips, blacklistedIP{
			IP:            e.Identifier,
			BlacklistedAt: e.BlacklistedAt.UnixMilli(),
			TimeRemaining: int(math.Ceil(e.TimeRemaining.Seconds())),
			RequestCount:  e.RequestCount,
		})
	}
	prometheus.BlacklistedIdentifiers.Set(float64(len(ips)))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"blacklistedIPs": ips})
}
