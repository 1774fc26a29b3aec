package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/models"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Me returns the profile of the authenticated user.
func Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	cacheKey := fmt.Sprintf("user:%d", userID)
	if cached, err := config.RedisClient.Get(config.Ctx, cacheKey).Result(); err == nil {
		var user models.User
		if err = json.Unmarshal([]byte(cached), &user); err == nil {
			return c.JSON(user)
		}
	}

	var user models.User
	err := config.DB.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM users WHERE id = $1",
		userID,
	).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.SecurityLogger.Warn("User behind valid token not found", zap.Int("user_id", userID))
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	if userJSON, err := json.Marshal(user); err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, userJSON, time.Hour)
	}

	logger.AuditLogger.Info("Profile fetched", zap.Int("user_id", userID))
	return c.JSON(user)
}
