package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

const (
	actionBlacklist   = "blacklist"
	actionUnblacklist = "unblacklist"
)

type blacklistActionRequest struct {
	IP     string `json:"ip"`
	Action string `json:"action"`
}

type blacklistActionHandler struct {
	logger       *logrus.Logger
	ledger       *ratelimit.Ledger
	timeProvider func() time.Time
}

func NewBlacklistActionHandler(logger *logrus.Logger, ledger *ratelimit.Ledger, timeProvider func() time.Time) Handler {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &blacklistActionHandler{
		logger:       logger,
		ledger:       ledger,
		timeProvider: timeProvider,
	}
}

// Handle @Summary Override blacklist state
// @Description Blacklists or unblacklists an identifier unconditionally
// @Tags Admin
// @Param Authorization header string true "Authorization token"
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Confirmation"
// @Failure 400 {object} map[string]interface{} "Missing fields or unknown action"
// @Failure 404 {object} map[string]interface{} "Identifier has no recorded entry"
// @Router /api/admin/blacklist [post]
func (h *blacklistActionHandler) Handle(c *fiber.Ctx) error {
	var req blacklistActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.IP == "" || req.Action == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ip and action are required"})
	}

	switch req.Action {
	case actionBlacklist:
		h.ledger.ForceBlacklist(req.IP, h.timeProvider())
		h.logger.WithField("ip", req.IP).Info("identifier blacklisted by admin")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": fmt.Sprintf("IP %s blacklisted", req.IP),
		})

	case actionUnblacklist:
		if err := h.ledger.ClearBlacklist(req.IP); err != nil {
			if errors.Is(err, ratelimit.ErrEntryNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "IP not found in rate limit records"})
			}
			h.logger.WithError(err).Error("failed to clear blacklist entry")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to clear blacklist entry"})
		}
		h.logger.WithField("ip", req.IP).Info("identifier unblacklisted by admin")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": fmt.Sprintf("IP %s unblacklisted", req.IP),
		})

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown action"})
	}
}
