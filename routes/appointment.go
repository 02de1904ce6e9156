package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

// SetupAppointmentRoutes configures the booking flow and appointment lookups
func SetupAppointmentRoutes(app *fiber.App, h *controllers.Handler) {
	appointment := app.Group("/appointments", middleware.Protected(h.JWTSecret))
	patientOnly := middleware.RequireRole(models.RolePatient)

	appointment.Get("/book/:id", patientOnly, h.BookingDays)
	appointment.Post("/book/time/:id", patientOnly, h.BookingHours)
	appointment.Post("/book/:id", patientOnly, h.CreateAppointment)
	// Registered before /:id so it is not taken for an id.
	appointment.Get("/appointmentData", h.GetAppointmentData)
	appointment.Get("/:id", h.GetAppointment)
}
