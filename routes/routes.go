package routes

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
)

// ResetLimit configures the rate limit of the password reset endpoint.
type ResetLimit struct {
	Counter middleware.Counter
	Limit   int
	Window  time.Duration
	Log     *slog.Logger
}

// Setup registers every route group of the clinic API.
func Setup(app *fiber.App, h *controllers.Handler, limit ResetLimit) {
	SetupUserRoutes(app, h, limit)
	SetupDoctorRoutes(app, h)
	SetupAppointmentRoutes(app, h)
	SetupHolidayRoutes(app, h)
}
