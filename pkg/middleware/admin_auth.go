package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// adminAuthMiddleware compares a bearer token against the configured admin
// secret. With no secret configured the admin surface is disabled outright.
type adminAuthMiddleware struct {
	logger *logrus.Logger
	token  string
}

func NewAdminAuthMiddleware(logger *logrus.Logger, token string) Middleware {
	return &adminAuthMiddleware{
		logger: logger,
		token:  token,
	}
}

func (m *adminAuthMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if m.token == "" {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Admin interface disabled"})
		}

		authHeader := ctx.Get(authorizationHeader)
		if authHeader == "" {
			m.logger.Debug("no authorization header provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization required"})
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.logger.Debug("invalid authorization header format")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format"})
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if tokenString == "" {
			m.logger.Debug("empty token provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Empty token provided"})
		}

		if tokenString != m.token {
			m.logger.Debug("invalid admin token")
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid token"})
		}

		return ctx.Next()
	}
}
