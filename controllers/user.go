package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/store"
	"github.com/meinhoongagan/clinic-app/utils"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	PeselNumber string `json:"pesel_number" validate:"required,len=11,numeric"`
}

func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.PhoneNumber = strings.ReplaceAll(strings.TrimSpace(in.PhoneNumber), " ", "")
	in.PeselNumber = strings.TrimSpace(in.PeselNumber)
}

// Register creates a user with the patient role and its patient profile.
func (h *Handler) Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if ok, err := bind(c, input, "Invalid registration data"); !ok {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	user := &models.User{
		Name:     input.FirstName + " " + input.LastName,
		Email:    input.Email,
		Password: string(hashed),
	}
	patient := &models.Patient{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		PeselNumber: input.PeselNumber,
	}

	err = h.Users.CreatePatient(c.UserContext(), user, patient)
	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		return fail(c, fiber.StatusConflict, "A patient with this "+conflict.Field+" already exists", nil)
	}
	if err != nil {
		h.logger(c).Error("create patient failed", "err", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}

	log := h.logger(c).With("user_id", user.ID)
	log.Info("patient registered", "patient_id", patient.ID)
	if err := h.Mailer.Send(user.Email, "Account activated", welcomeEmail(user)); err != nil {
		log.Warn("welcome email not sent", "err", err)
	}

	// Remove password from response
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(user)
}

// AdminPanel returns the figures and user list the admin dashboard shows.
func (h *Handler) AdminPanel(c *fiber.Ctx) error {
	ctx := c.UserContext()
	users, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to get users", err)
	}
	doctors, err := h.Doctors.List(ctx)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to get doctors", err)
	}

	patients := 0
	for i := range users {
		users[i].Password = ""
		if users[i].Patient != nil {
			patients++
		}
	}

	return c.JSON(fiber.Map{
		"users":         users,
		"user_count":    len(users),
		"patient_count": patients,
		"doctor_count":  len(doctors),
	})
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user id", nil)
	}
	if id == middleware.UserID(c) {
		return fail(c, fiber.StatusBadRequest, "You cannot delete your own account", nil)
	}

	err = h.Users.Delete(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "User not found", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to delete user", err)
	}

	h.logger(c).Info("user deleted", "user_id", id, "by", middleware.UserID(c))
	return c.SendStatus(fiber.StatusNoContent)
}

type ResetInput struct {
	Email string `json:"email" validate:"required,email"`
}

func (in *ResetInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

// ResetPassword replaces the password of the account behind an email with a random one
// and mails it to that address.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	input := new(ResetInput)
	if ok, err := bind(c, input, "Invalid email"); !ok {
		return err
	}

	ctx := c.UserContext()
	user, err := h.Users.GetByEmail(ctx, input.Email)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusBadRequest, "Invalid email", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	password, err := utils.GeneratePassword()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate password", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}
	if err := h.Users.SetPassword(ctx, user.ID, string(hashed)); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to reset password", err)
	}

	log := h.logger(c).With("user_id", user.ID)
	if err := h.Mailer.Send(user.Email, "Password reset", resetPasswordEmail(user, password)); err != nil {
		log.Error("reset email not sent", "err", err)
		return fail(c, fiber.StatusInternalServerError, "Password was reset but the email could not be sent, try again", err)
	}
	log.Info("password reset")

	return c.JSON(fiber.Map{
		"message": "A new password has been sent to your email",
	})
}
