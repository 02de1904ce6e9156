package controllers

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validate = newValidator()
	phoneRe  = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return v
}

// fieldErrors turns validator errors into one message per JSON field.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must contain digits only"
	case "phone":
		return "must be 9 to 15 digits"
	case "datetime":
		return "must have the format " + fe.Param()
	}
	return "is invalid"
}

// bind parses the JSON body into in and validates it. On failure the 400 response is
// already written and ok is false.
func bind(c *fiber.Ctx, in interface{}, msg string) (ok bool, err error) {
	if err := c.BodyParser(in); err != nil {
		return false, fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	if n, isNormalizer := in.(interface{ normalize() }); isNormalizer {
		n.normalize()
	}
	if err := validate.Struct(in); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": msg,
			"errors":  fieldErrors(err),
		})
	}
	return true, nil
}
