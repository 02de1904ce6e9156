package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

// SetupUserRoutes configures registration, authentication and user administration
func SetupUserRoutes(app *fiber.App, h *controllers.Handler, limit ResetLimit) {
	users := app.Group("/users")

	// Public routes
	users.Post("/add", h.Register)
	users.Post("/login", h.Login)
	users.Post("/refresh", h.RefreshToken)
	users.Post("/resetPassword",
		middleware.RateLimit(limit.Counter, limit.Limit, limit.Window, "reset", limit.Log),
		h.ResetPassword)

	// Protected routes
	protected := middleware.Protected(h.JWTSecret)
	users.Get("/me", protected, h.GetUserProfile)
	users.Get("/admin", protected, middleware.RequireRole(models.RoleAdmin), h.AdminPanel)
	users.Delete("/delete/:id", protected, middleware.RequireRole(models.RoleAdmin), h.DeleteUser)
}
