package v1

import (
	"task-manager/internal/api/v1/handlers"
	"task-manager/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App) {
	// Auth
	app.Post("/register", handlers.Register)
	app.Post("/login", handlers.Login)
	app.Get("/me", middleware.UseToken, handlers.Me)

	// Categories
	app.Post("/categories", middleware.UseToken, handlers.CreateCategory)

	// Tasks. Create requires an identity for the ownership check; the read
	// and lifecycle endpoints are open, matching the public API contract.
	app.Post("/tasks", middleware.UseToken, handlers.CreateTask)
	app.Get("/tasks", handlers.ListTasks)
	app.Get("/tasks/:id", handlers.GetTask)
	app.Put("/tasks/:id", handlers.UpdateTask)
	app.Delete("/tasks/:id", handlers.DeleteTask)
	app.Post("/tasks/restore/:id", handlers.RestoreTask)
}
