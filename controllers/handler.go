package controllers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/availability"
	"github.com/meinhoongagan/clinic-app/store"
	"github.com/meinhoongagan/clinic-app/utils"
)

// Handler carries the collaborators every route needs.
type Handler struct {
	Users        store.Users
	Doctors      store.Doctors
	Appointments store.Appointments
	Holidays     store.Holidays
	Mailer       utils.Mailer
	// Uploader is nil when Cloudinary is not configured.
	Uploader  utils.Uploader
	Grid      availability.Grid
	Location  *time.Location
	JWTSecret string
	Log       *slog.Logger
	// Now defaults to time.Now; tests pin the calendar with it.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().In(h.Location)
	}
	return time.Now().In(h.Location)
}

func (h *Handler) logger(c *fiber.Ctx) *slog.Logger {
	if id, ok := c.Locals("requestid").(string); ok {
		return h.Log.With("request_id", id)
	}
	return h.Log
}

// bookable reports whether date is a working day that is not a stored holiday.
func (h *Handler) bookable(ctx context.Context, date time.Time) (bool, error) {
	holidays, err := h.Holidays.InMonth(ctx, date.Year(), date.Month())
	if err != nil {
		return false, err
	}
	return availability.IsWorkingDay(date, store.HolidayDates(holidays, h.Location)...), nil
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func fail(c *fiber.Ctx, status int, message string, err error) error {
	resp := utils.ErrorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.Status(status).JSON(resp)
}
