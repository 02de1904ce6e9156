package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTTL  = 24 * time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

func (h *Handler) accessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":         user.ID,
		"email":      user.Email,
		"role":       user.Role.Name,
		"patient_id": user.PatientID(),
		"exp":        time.Now().Add(accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.JWTSecret))
}

// Refresh tokens carry no role, so Protected rejects them as access tokens.
func (h *Handler) refreshToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"typ":   "refresh",
		"exp":   time.Now().Add(refreshTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.JWTSecret))
}

// Login handles user authentication
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	input := new(LoginInput)
	if ok, err := bind(c, input, "Email and password are required"); !ok {
		return err
	}

	user, err := h.Users.GetByEmail(c.UserContext(), strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}

	token, err := h.accessToken(user)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}
	refresh, err := h.refreshToken(user)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate refresh token", err)
	}

	h.logger(c).Info("user logged in", "user_id", user.ID, "role", user.Role.Name)

	return c.JSON(fiber.Map{
		"token":        token,
		"refreshToken": refresh,
		"user": fiber.Map{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role.Name,
			"patient_id": user.PatientID(),
		},
	})
}

// RefreshToken generates a new access token using a refresh token
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	input := new(RefreshRequest)
	if ok, err := bind(c, input, "Refresh token is required"); !ok {
		return err
	}

	token, err := jwt.Parse(input.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return fail(c, fiber.StatusUnauthorized, "Invalid refresh token", nil)
	}

	claims, _ := token.Claims.(jwt.MapClaims)
	if claims["typ"] != "refresh" {
		return fail(c, fiber.StatusUnauthorized, "Invalid refresh token", nil)
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Invalid refresh token", nil)
	}

	// Reload so role changes and deletions take effect on refresh.
	user, err := h.Users.GetByID(c.UserContext(), uint(id))
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusUnauthorized, "User no longer exists", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	access, err := h.accessToken(user)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}
	return c.JSON(fiber.Map{
		"token": access,
	})
}

// GetUserProfile returns the current user's profile
func (h *Handler) GetUserProfile(c *fiber.Ctx) error {
	user, err := h.Users.GetByID(c.UserContext(), middleware.UserID(c))
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "User not found", nil)
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	// Don't send password
	user.Password = ""
	return c.JSON(user)
}
