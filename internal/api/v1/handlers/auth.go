package handlers

import (
	"task-manager/internal/config"
	"task-manager/pkg/auth"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Auth handlers

func Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Username, email, and password are required"})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Username, email, and password are required"})
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error registering user"})
	}

	var userID int
	err = config.DB.QueryRow(
		"INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id",
		req.Username, req.Email, hashedPassword,
	).Scan(&userID)
	if err != nil {
		// 23505 is the unique_violation code; the only unique column is email.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.SecurityLogger.Warn("Duplicate email on register", zap.String("email", req.Email))
			return c.Status(400).JSON(fiber.Map{"error": "User with this email exists"})
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error registering user"})
	}

	identity := auth.Identity{ID: userID, Username: req.Username, Email: req.Email}
	token, err := auth.GenerateToken(identity, config.SecretKey)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error registering user"})
	}

	logger.AuditLogger.Info("User registered", zap.Int("user_id", userID))
	return c.Status(201).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       userID,
			"username": req.Username,
			"email":    req.Email,
		},
	})
}

func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	var user struct {
		ID       int
		Username string
		Email    string
		Password string
	}
	err := config.DB.QueryRow(
		"SELECT id, username, email, password FROM users WHERE email = $1",
		req.Email,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password)
	if err != nil {
		// Same response as a bad password so the email cannot be probed.
		logger.SecurityLogger.Warn("Login with unknown email", zap.String("email", req.Email))
		return c.Status(400).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	if !auth.VerifyPassword(req.Password, user.Password) {
		logger.SecurityLogger.Warn("Invalid password", zap.Int("user_id", user.ID))
		return c.Status(400).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	identity := auth.Identity{ID: user.ID, Username: user.Username, Email: user.Email}
	token, err := auth.GenerateToken(identity, config.SecretKey)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error logging in user"})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return c.Status(200).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
