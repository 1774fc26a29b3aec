package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/models"
	"task-manager/internal/websocket"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Task handlers.
//
// Tasks are soft-deleted: list and get only see rows with deleted = FALSE,
// while update, delete, and restore address the row regardless of the flag.

const taskColumns = `t.id, t.user_id, t.category_id, t.title, t.description,
	t.completed, t.deleted, t.created_at, t.updated_at, c.id, c.name`

func scanTask(row interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	var category models.CategorySummary
	err := row.Scan(
		&task.ID, &task.UserID, &task.CategoryID, &task.Title, &task.Description,
		&task.Completed, &task.Deleted, &task.CreatedAt, &task.UpdatedAt,
		&category.ID, &category.Name,
	)
	if err != nil {
		return models.Task{}, err
	}
	task.Category = &category
	return task, nil
}

func fetchTask(taskID int) (models.Task, error) {
	row := config.DB.QueryRow(
		"SELECT "+taskColumns+" FROM tasks t JOIN categories c ON c.id = t.category_id WHERE t.id = $1",
		taskID,
	)
	return scanTask(row)
}

func taskCacheKey(taskID int) string {
	return fmt.Sprintf("task:%d", taskID)
}

// cacheTask stores active tasks only, so a cache hit can never resurrect a
// soft-deleted task. Failures are logged and ignored.
func cacheTask(task models.Task) {
	if task.Deleted {
		return
	}
	taskJSON, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := config.RedisClient.SetEX(config.Ctx, taskCacheKey(task.ID), taskJSON, time.Hour).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching task", zap.Error(err))
	}
}

func dropTaskCache(taskID int) {
	config.RedisClient.Del(config.Ctx, taskCacheKey(taskID))
}

func CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type TaskRequest struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description" validate:"required"`
		CategoryID  int    `json:"categoryId" validate:"required"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Title, description, and categoryId are required"})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Title, description, and categoryId are required"})
	}

	// The category must belong to the caller. A missing category and someone
	// else's category produce the same response.
	category, err := findOwnedCategory(req.CategoryID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.SecurityLogger.Warn("Task create against unowned category",
				zap.Int("user_id", userID), zap.Int("category_id", req.CategoryID))
			return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID or unauthorized access"})
		}
		logger.ErrorLogger.Error("Error resolving category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while creating the task."})
	}

	var task models.Task
	err = config.DB.QueryRow(
		`INSERT INTO tasks (user_id, category_id, title, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, category_id, title, description, completed, deleted, created_at, updated_at`,
		userID, category.ID, req.Title, req.Description,
	).Scan(
		&task.ID, &task.UserID, &task.CategoryID, &task.Title, &task.Description,
		&task.Completed, &task.Deleted, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while creating the task."})
	}
	task.Category = &category

	websocket.TaskEvents.PublishTask("task.created", task)
	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("user_id", userID))
	return c.Status(201).JSON(task)
}

func ListTasks(c *fiber.Ctx) error {
	var rows *sql.Rows
	var err error

	query := "SELECT " + taskColumns + " FROM tasks t JOIN categories c ON c.id = t.category_id WHERE t.deleted = FALSE"
	if categoryParam := c.Query("categoryId"); categoryParam != "" {
		categoryID, convErr := strconv.Atoi(categoryParam)
		if convErr != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
		}
		rows, err = config.DB.Query(query+" AND t.category_id = $1", categoryID)
	} else {
		rows, err = config.DB.Query(query)
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while fetching tasks."})
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning tasks", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": "An error occurred while fetching tasks."})
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while fetching tasks."})
	}

	logger.AuditLogger.Info("Tasks fetched", zap.Int("count", len(tasks)))
	return c.JSON(tasks)
}

func GetTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	// Only active tasks are cached, so a hit can be returned as-is.
	if cached, err := config.RedisClient.Get(config.Ctx, taskCacheKey(taskID)).Result(); err == nil {
		var task models.Task
		if err = json.Unmarshal([]byte(cached), &task); err == nil {
			logger.AuditLogger.Info("Task found (from cache)", zap.Int("task_id", taskID))
			return c.JSON(task)
		}
	}

	row := config.DB.QueryRow(
		"SELECT "+taskColumns+" FROM tasks t JOIN categories c ON c.id = t.category_id WHERE t.id = $1 AND t.deleted = FALSE",
		taskID,
	)
	task, err := scanTask(row)
	if err != nil {
		// A soft-deleted task is indistinguishable from a missing one here.
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Task not found or deleted"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while fetching the task."})
	}

	cacheTask(task)
	logger.AuditLogger.Info("Task found", zap.Int("task_id", taskID))
	return c.JSON(task)
}

func UpdateTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	// Unlike get, update addresses the row whether or not it is deleted.
	var existingID int
	err = config.DB.QueryRow("SELECT id FROM tasks WHERE id = $1", taskID).Scan(&existingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while updating the task."})
	}

	// Pointers distinguish "absent" from zero values: completed=false must
	// apply, while title="" must not.
	type UpdateTaskRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
		CategoryID  *int    `json:"categoryId"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Bad request"})
	}

	// Category re-assignment checks existence only; ownership was enforced
	// when the task was created.
	if req.CategoryID != nil {
		var categoryID int
		err = config.DB.QueryRow("SELECT id FROM categories WHERE id = $1", *req.CategoryID).Scan(&categoryID)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
			}
			logger.ErrorLogger.Error("Error resolving category", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": "An error occurred while updating the task."})
		}
	}

	// Single statement, so concurrent updates cannot interleave between a
	// read and a write. NULLIF keeps empty strings from clobbering fields;
	// nil pointers arrive as NULL and COALESCE away.
	_, err = config.DB.Exec(`
		UPDATE tasks
		SET title = COALESCE(NULLIF($1, ''), title),
			description = COALESCE(NULLIF($2, ''), description),
			completed = COALESCE($3, completed),
			category_id = COALESCE($4, category_id),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5`,
		req.Title, req.Description, req.Completed, req.CategoryID, taskID,
	)
	if err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while updating the task."})
	}

	task, err := fetchTask(taskID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching updated task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while updating the task."})
	}

	dropTaskCache(taskID)
	cacheTask(task)
	websocket.TaskEvents.PublishTask("task.updated", task)
	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID))
	return c.JSON(task)
}

func DeleteTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	// Soft delete is idempotent: the only requirement is that the row exists.
	res, err := config.DB.Exec(
		"UPDATE tasks SET deleted = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1",
		taskID,
	)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while deleting the task."})
	}
	affected, err := res.RowsAffected()
	if err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while deleting the task."})
	}
	if affected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
	}

	dropTaskCache(taskID)
	websocket.TaskEvents.PublishTask("task.deleted", fiber.Map{"id": taskID})
	logger.AuditLogger.Info("Task soft-deleted", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{"message": "Task marked as deleted"})
}

func RestoreTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	// Restore flips the flag only when it is set. The conditional update is
	// the check: an active or missing task affects zero rows, so restore is
	// deliberately not idempotent.
	res, err := config.DB.Exec(
		"UPDATE tasks SET deleted = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted = TRUE",
		taskID,
	)
	if err != nil {
		logger.ErrorLogger.Error("Error restoring task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while restoring the task."})
	}
	affected, err := res.RowsAffected()
	if err != nil {
		logger.ErrorLogger.Error("Error restoring task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while restoring the task."})
	}
	if affected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Task not found or already active"})
	}

	task, err := fetchTask(taskID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching restored task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "An error occurred while restoring the task."})
	}

	cacheTask(task)
	websocket.TaskEvents.PublishTask("task.restored", task)
	logger.AuditLogger.Info("Task restored", zap.Int("task_id", taskID))
	return c.JSON(task)
}
