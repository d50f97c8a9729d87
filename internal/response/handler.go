package response

import (
	"errors"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type StandardResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message,omitempty"`
	Data     interface{}  `json:"data,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Redirect string       `json:"redirect,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(StandardResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Outcome reports a workflow submission. Warnings are user feedback, not failures.
func Outcome(c *fiber.Ctx, data interface{}, message string, warnings []string, redirect string) error {
	return c.JSON(StandardResponse{
		Success:  true,
		Message:  message,
		Data:     data,
		Warnings: warnings,
		Redirect: redirect,
	})
}

func Created(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(fiber.StatusCreated).JSON(StandardResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func Error(c *fiber.Ctx, statusCode int, errorCode string, message string, details interface{}) error {
	return c.Status(statusCode).JSON(StandardResponse{
		Success: false,
		Error: &ErrorDetail{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
	})
}

func BadRequest(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusBadRequest, "BAD_REQUEST", message, details)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFound(c *fiber.Ctx, resource string) error {
	return Error(c, fiber.StatusNotFound, "NOT_FOUND", resource+" not found", nil)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, "CONFLICT", message, nil)
}

func ValidationError(c *fiber.Ctx, errors interface{}) error {
	return Error(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", errors)
}

func InternalError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

// FromError writes the response matching an apperror kind.
func FromError(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		log.Errorf("request %s %s failed: %v", c.Method(), c.Path(), err)
		return InternalError(c, "Something went wrong")
	}

	switch appErr.Kind {
	case apperror.KindAuthorization:
		return Error(c, fiber.StatusForbidden, "FORBIDDEN", appErr.Message, appErr.Details)
	case apperror.KindNotFound:
		return Error(c, fiber.StatusNotFound, "NOT_FOUND", appErr.Message, appErr.Details)
	case apperror.KindValidation:
		return Error(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", appErr.Message, appErr.Details)
	case apperror.KindInvalidState:
		return Error(c, fiber.StatusConflict, "INVALID_STATE", appErr.Message, appErr.Details)
	case apperror.KindConflict:
		return Error(c, fiber.StatusConflict, "CONFLICT", appErr.Message, appErr.Details)
	}
	return InternalError(c, appErr.Message)
}
