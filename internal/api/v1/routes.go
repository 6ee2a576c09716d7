package v1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/myportfolios/task-app/internal/api/v1/handlers"
	"github.com/myportfolios/task-app/internal/middleware"
)

func RegisterRoutes(app *fiber.App, h *handlers.Handler) {
	protected := middleware.RequireAuth(h.Store, h.Secret)

	// Users
	app.Post("/users", h.Signup)
	app.Post("/users/login", h.Login)
	app.Post("/users/logout", protected, h.Logout)
	app.Post("/users/logoutAll", protected, h.LogoutAll)
	app.Get("/users/me", protected, h.GetProfile)
	app.Patch("/users/me", protected, h.UpdateProfile)
	app.Delete("/users/me", protected, h.DeleteProfile)

	// Avatars; the fetch route is public and must come after /users/me/avatar
	app.Post("/users/me/avatar", protected, h.UploadAvatar)
	app.Delete("/users/me/avatar", protected, h.DeleteAvatar)
	app.Get("/users/:id/avatar", h.GetAvatar)

	// Tasks
	taskRoutes := app.Group("/tasks", protected)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Patch("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)
}
