package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/example/rollcall/internal/core/attendance"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	ErrorCode       string              `json:"error_code"`
	ConflictProject string              `json:"conflict_project,omitempty"`
	Errors          map[string][]string `json:"errors,omitempty"`
}

func jsonOK(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func jsonValidationError(c *fiber.Ctx, err error) error {
	fieldErrors := map[string][]string{}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		for _, fe := range ves {
			field := strings.ToLower(fe.Field())
			fieldErrors[field] = append(fieldErrors[field], fe.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Message:   "validation failed",
		ErrorCode: "VALIDATION_ERROR",
		Errors:    fieldErrors,
	})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, attendance.ErrInvalidInput), errors.Is(err, attendance.ErrInvalidHours):
		return fiber.StatusBadRequest
	case errors.Is(err, attendance.ErrWorkerNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, attendance.ErrNotAssigned):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, attendance.ErrDoubleBooked):
		return fiber.StatusConflict
	case errors.Is(err, attendance.ErrRemoteSync):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusUnprocessableEntity:
		return "NOT_ASSIGNED"
	case fiber.StatusConflict:
		return "DOUBLE_BOOKED"
	case fiber.StatusBadGateway:
		return "REMOTE_SYNC_FAILED"
	}
	if status >= 500 {
		return "INTERNAL_ERROR"
	}
	return "ERROR"
}

// handleError renders every error returned by a handler.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	resp := ErrorResponse{
		Message:   err.Error(),
		ErrorCode: errorCode(status),
	}
	if other, ok := attendance.ConflictProject(err); ok {
		resp.ConflictProject = other
	}
	if status >= 500 && status != fiber.StatusBadGateway {
		s.logger.ErrorContext(c.UserContext(), "request failed", "path", c.OriginalURL(), "error", err)
		resp.Message = fiber.ErrInternalServerError.Message
	}
	return c.Status(status).JSON(resp)
}
