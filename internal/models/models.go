package models

import "time"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategorySummary is the joined category view embedded in task responses.
type CategorySummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Task rows are never physically removed; Deleted marks them invisible
// to normal lookups until restored.
type Task struct {
	ID          int              `json:"id"`
	UserID      int              `json:"user_id"`
	CategoryID  int              `json:"category_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Completed   bool             `json:"completed"`
	Deleted     bool             `json:"deleted"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Category    *CategorySummary `json:"category,omitempty"`
}
