package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/availability"
	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/store"
)

type HolidayInput struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required,max=100"`
}

func (in *HolidayInput) normalize() {
	in.Date = strings.TrimSpace(in.Date)
	in.Name = strings.TrimSpace(in.Name)
}

func (h *Handler) CreateHoliday(c *fiber.Ctx) error {
	input := new(HolidayInput)
	if ok, err := bind(c, input, "Invalid holiday"); !ok {
		return err
	}

	date, err := availability.ParseDate(input.Date, h.Location)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid date", err)
	}
	holiday := &models.Holiday{Date: date.Format(availability.DateLayout), Name: input.Name}

	err = h.Holidays.Create(c.UserContext(), holiday)
	if errors.Is(err, store.ErrConflict) {
		return fail(c, fiber.StatusConflict, "A holiday on this date already exists", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create holiday", err)
	}
	return c.Status(fiber.StatusCreated).JSON(holiday)
}

// GetHolidays lists all holidays, or those of ?month=YYYY-MM.
func (h *Handler) GetHolidays(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		holidays []models.Holiday
		err      error
	)
	if q := c.Query("month"); q != "" {
		month, perr := availability.ParseMonth(q, h.Location)
		if perr != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid month", perr)
		}
		holidays, err = h.Holidays.InMonth(ctx, month.Year(), month.Month())
	} else {
		holidays, err = h.Holidays.List(ctx)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to get holidays", err)
	}
	return c.JSON(holidays)
}

func (h *Handler) DeleteHoliday(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid holiday id", nil)
	}
	err = h.Holidays.Delete(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Holiday not found", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to delete holiday", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
