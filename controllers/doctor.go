package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/store"
)

const maxPhotoSize = 5 << 20

type DoctorInput struct {
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Specialization string `json:"specialization" validate:"required,max=100"`
}

func (in *DoctorInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Specialization = strings.TrimSpace(in.Specialization)
}

// AddDoctor creates a doctor from first name, last name and specialization.
func (h *Handler) AddDoctor(c *fiber.Ctx) error {
	input := new(DoctorInput)
	if ok, err := bind(c, input, "Invalid doctor data"); !ok {
		return err
	}

	doctor := &models.Doctor{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Specialization: input.Specialization,
	}
	if err := h.Doctors.Create(c.UserContext(), doctor); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create doctor", err)
	}

	h.logger(c).Info("doctor added", "doctor_id", doctor.ID)
	return c.Status(fiber.StatusCreated).JSON(doctor)
}

func (h *Handler) GetAllDoctors(c *fiber.Ctx) error {
	doctors, err := h.Doctors.List(c.UserContext())
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch doctors", err)
	}
	return c.JSON(doctors)
}

// UploadDoctorPhoto stores the multipart "photo" file and saves its URL on the doctor.
func (h *Handler) UploadDoctorPhoto(c *fiber.Ctx) error {
	if h.Uploader == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Photo uploads are not configured", nil)
	}

	id, err := parseID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid doctor id", nil)
	}

	ctx := c.UserContext()
	doctor, err := h.Doctors.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Doctor not found", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch doctor", err)
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Missing photo file", err)
	}
	if fh.Size > maxPhotoSize {
		return fail(c, fiber.StatusBadRequest, "Photo must be at most 5 MB", nil)
	}
	if ct := fh.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return fail(c, fiber.StatusBadRequest, "Photo must be an image", nil)
	}

	f, err := fh.Open()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot read photo", err)
	}
	defer f.Close()

	url, err := h.Uploader.Upload(ctx, f, "doctors")
	if err != nil {
		h.logger(c).Error("photo upload failed", "doctor_id", id, "err", err)
		return fail(c, fiber.StatusBadGateway, "Failed to upload photo", err)
	}
	if err := h.Doctors.SetPhoto(ctx, id, url); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to save photo", err)
	}

	doctor.PhotoURL = url
	return c.JSON(doctor)
}
