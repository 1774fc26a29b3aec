package config

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
)

var (
	// Shared dependencies used across the application, set during bootstrap.
	DB          *sql.DB
	SecretKey   []byte
	Validate    = validator.New()
	Ctx         = context.Background()
	RedisClient *redis.Client
)
