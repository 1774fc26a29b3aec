package handlers

import (
	"task-manager/internal/config"
	"task-manager/internal/models"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Category handlers

// findOwnedCategory returns the category only when it exists and belongs to
// ownerID. A category owned by someone else scans as sql.ErrNoRows, so
// callers cannot tell "missing" from "not yours".
func findOwnedCategory(categoryID, ownerID int) (models.CategorySummary, error) {
	var category models.CategorySummary
	err := config.DB.QueryRow(
		"SELECT id, name FROM categories WHERE id = $1 AND user_id = $2",
		categoryID, ownerID,
	).Scan(&category.ID, &category.Name)
	return category, err
}

func CreateCategory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type CategoryRequest struct {
		Name string `json:"name" validate:"required"`
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create category", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Category name is required"})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create category", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Category name is required"})
	}

	var category models.Category
	err := config.DB.QueryRow(
		"INSERT INTO categories (name, user_id) VALUES ($1, $2) RETURNING id, name, user_id, created_at, updated_at",
		req.Name, userID,
	).Scan(&category.ID, &category.Name, &category.UserID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.AuditLogger.Warn("Duplicate category name", zap.String("name", req.Name))
			return c.Status(400).JSON(fiber.Map{"error": "Category name already exists"})
		}
		logger.ErrorLogger.Error("Error creating category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while creating the category."})
	}

	logger.AuditLogger.Info("Category created", zap.Int("category_id", category.ID), zap.Int("user_id", userID))
	return c.Status(201).JSON(category)
}
