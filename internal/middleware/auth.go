package middleware

import (
	"errors"
	"strings"

	"task-manager/internal/config"
	"task-manager/pkg/auth"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UseToken rejects requests without a valid bearer token and attaches the
// authenticated identity to the request context for downstream handlers.
func UseToken(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No token provided"})
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token format"})
	}

	identity, err := auth.ParseToken(parts[1], config.SecretKey)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			logger.SecurityLogger.Warn("Expired token", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token expired"})
		}
		logger.SecurityLogger.Warn("Invalid token", zap.String("path", c.Path()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	c.Locals("userID", identity.ID)
	c.Locals("username", identity.Username)
	c.Locals("email", identity.Email)
	return c.Next()
}
