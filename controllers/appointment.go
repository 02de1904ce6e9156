package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/availability"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/store"
)

type DayInput struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (in *DayInput) normalize() {
	in.Date = strings.TrimSpace(in.Date)
}

type BookingInput struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}

func (in *BookingInput) normalize() {
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
}

func (h *Handler) doctorFromPath(c *fiber.Ctx) (*models.Doctor, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, fail(c, fiber.StatusBadRequest, "Invalid doctor id", nil)
	}
	doctor, err := h.Doctors.GetByID(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fail(c, fiber.StatusNotFound, "Doctor not found", nil)
	}
	if err != nil {
		return nil, fail(c, fiber.StatusInternalServerError, "Failed to fetch doctor", err)
	}
	return doctor, nil
}

// BookingDays lists the working days of the current month, or of ?month=YYYY-MM.
// Days already past in the current month are listed as well.
func (h *Handler) BookingDays(c *fiber.Ctx) error {
	doctor, err := h.doctorFromPath(c)
	if doctor == nil {
		return err
	}

	month := h.now()
	if q := c.Query("month"); q != "" {
		month, err = availability.ParseMonth(q, h.Location)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid month", err)
		}
	}

	holidays, err := h.Holidays.InMonth(c.UserContext(), month.Year(), month.Month())
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch holidays", err)
	}

	return c.JSON(fiber.Map{
		"doctorId": doctor.ID,
		"month":    month.Format(availability.MonthLayout),
		"dates":    availability.ListWorkingDays(month, store.HolidayDates(holidays, h.Location)...),
	})
}

// BookingHours lists the free slots of a doctor on the posted date.
func (h *Handler) BookingHours(c *fiber.Ctx) error {
	input := new(DayInput)
	if ok, err := bind(c, input, "Invalid date"); !ok {
		return err
	}
	date, err := availability.ParseDate(input.Date, h.Location)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid date", err)
	}

	doctor, err := h.doctorFromPath(c)
	if doctor == nil {
		return err
	}

	ctx := c.UserContext()
	ok, err := h.bookable(ctx, date)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch holidays", err)
	}
	if !ok {
		return fail(c, fiber.StatusBadRequest, "The clinic is closed on this day", nil)
	}

	day := date.Format(availability.DateLayout)
	times, err := h.Appointments.OccupiedTimes(ctx, doctor.ID, day)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch appointments", err)
	}

	occupied := make([]availability.Slot, 0, len(times))
	for _, t := range times {
		slot, err := availability.ParseSlot(t)
		if err != nil {
			h.logger(c).Warn("skipping malformed appointment time", "doctor_id", doctor.ID, "date", day, "time", t)
			continue
		}
		occupied = append(occupied, slot)
	}

	return c.JSON(fiber.Map{
		"doctorId": doctor.ID,
		"date":     day,
		"hours":    h.Grid.ListAvailableSlots(occupied),
	})
}

// CreateAppointment books the posted date and time with the doctor for the calling patient.
func (h *Handler) CreateAppointment(c *fiber.Ctx) error {
	patientID := middleware.PatientID(c)
	if patientID == 0 {
		return fail(c, fiber.StatusForbidden, "Only patients can book appointments", nil)
	}

	input := new(BookingInput)
	if ok, err := bind(c, input, "Invalid booking"); !ok {
		return err
	}
	date, err := availability.ParseDate(input.Date, h.Location)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid date", err)
	}
	slot, err := availability.ParseSlot(input.Time)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid time", err)
	}
	if !h.Grid.Contains(slot) {
		return fail(c, fiber.StatusBadRequest, "Time is outside the clinic's appointment slots", nil)
	}

	doctor, err := h.doctorFromPath(c)
	if doctor == nil {
		return err
	}

	ctx := c.UserContext()
	ok, err := h.bookable(ctx, date)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch holidays", err)
	}
	if !ok {
		return fail(c, fiber.StatusBadRequest, "The clinic is closed on this day", nil)
	}

	appointment := &models.Appointment{
		PatientID: patientID,
		DoctorID:  doctor.ID,
		Date:      date.Format(availability.DateLayout),
		Time:      slot.String(),
	}
	err = h.Appointments.Create(ctx, appointment)
	if errors.Is(err, store.ErrConflict) {
		return fail(c, fiber.StatusConflict, "Time slot not available", err)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create appointment", err)
	}

	log := h.logger(c).With("appointment_id", appointment.ID)
	log.Info("appointment booked", "doctor_id", doctor.ID, "patient_id", patientID,
		"date", appointment.Date, "time", appointment.Time)

	if user, err := h.Users.GetByID(ctx, middleware.UserID(c)); err != nil {
		log.Warn("confirmation email not sent", "err", err)
	} else if err := h.Mailer.Send(user.Email, "Appointment Confirmation", bookingEmail(user, doctor, appointment)); err != nil {
		log.Warn("confirmation email not sent", "err", err)
	}

	appointment.Doctor = doctor
	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// GetAppointment returns one appointment. Patients only see their own.
func (h *Handler) GetAppointment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid appointment id", nil)
	}

	appointment, err := h.Appointments.GetByID(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Appointment not found", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch appointment", err)
	}

	if middleware.Role(c) != models.RoleAdmin && appointment.PatientID != middleware.PatientID(c) {
		return fail(c, fiber.StatusNotFound, "Appointment not found", nil)
	}
	return c.JSON(appointment)
}

// GetAppointmentData returns the caller's appointments with the doctors they reference.
func (h *Handler) GetAppointmentData(c *fiber.Ctx) error {
	patientID := middleware.PatientID(c)
	if patientID == 0 {
		return fail(c, fiber.StatusForbidden, "No patient profile for this account", nil)
	}

	ctx := c.UserContext()
	appointments, err := h.Appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch appointments", err)
	}
	all, err := h.Doctors.List(ctx)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch doctors", err)
	}

	byID := make(map[uint]models.Doctor, len(all))
	for _, d := range all {
		byID[d.ID] = d
	}

	doctors := []models.Doctor{}
	seen := map[uint]bool{}
	for _, a := range appointments {
		d, ok := byID[a.DoctorID]
		if !ok || seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		doctors = append(doctors, d)
	}

	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return c.JSON(fiber.Map{
		"appointments": appointments,
		"doctors":      doctors,
	})
}
