package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

func SetupHolidayRoutes(app *fiber.App, h *controllers.Handler) {
	holidays := app.Group("/holidays", middleware.Protected(h.JWTSecret))
	holidays.Get("/", h.GetHolidays)
	holidays.Post("/", middleware.RequireRole(models.RoleAdmin), h.CreateHoliday)
	holidays.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.DeleteHoliday)
}
