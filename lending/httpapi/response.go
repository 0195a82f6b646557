package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type envelope struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func success(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(envelope{Code: code, Status: statusSuccess, Message: message, Data: data})
}

func failure(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(envelope{Code: code, Status: statusError, Message: message})
}

func validationFailure(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return failure(c, fiber.StatusBadRequest, "invalid input")
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}

	return c.Status(fiber.StatusBadRequest).JSON(envelope{
		Code:    fiber.StatusBadRequest,
		Status:  statusError,
		Message: "validation failed",
		Errors:  fields,
	})
}

// statusOf maps the error taxonomy of the engine onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, core.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// messageOf never exposes infrastructure errors; those are logged instead.
func messageOf(err error) string {
	if reason := core.ReasonOf(err); reason != "" {
		return reason
	}

	switch {
	case errors.Is(err, core.ErrPolicyMissing):
		return "lending policy is not configured"
	case errors.Is(err, core.ErrPolicyInvalid):
		return "lending policy is invalid"
	case errors.Is(err, core.ErrConfiguration):
		return "service is misconfigured"
	default:
		return "internal server error"
	}
}
