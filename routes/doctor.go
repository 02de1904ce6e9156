package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

func SetupDoctorRoutes(app *fiber.App, h *controllers.Handler) {
	doctors := app.Group("/doctors", middleware.Protected(h.JWTSecret))
	doctors.Get("/all", middleware.RequireRole(models.RolePatient, models.RoleAdmin), h.GetAllDoctors)
	doctors.Post("/addDoctor", middleware.RequireRole(models.RoleAdmin), h.AddDoctor)
	doctors.Post("/:id/photo", middleware.RequireRole(models.RoleAdmin), h.UploadDoctorPhoto)
}
