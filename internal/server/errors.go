package server

import (
	"errors"
	"log/slog"

	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// CodeRateLimited is reported by rate limiters.
const CodeRateLimited = "RATE_LIMITED"

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StatusForCode maps an error code onto an HTTP status.
func StatusForCode(code string) int {
	switch code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeInvalidCredentials,
		models.CodeInvalidToken,
		models.CodeTokenExpired,
		models.CodeTokenMalformed,
		models.CodeTokenBadSignature,
		models.CodeTokenKindMismatch,
		models.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	case CodeRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes err with the status of its code. Errors that are
// not AppErrors, and internal errors, are logged and reported without detail.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || StatusForCode(appErr.Code) == fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Internal server error",
			Code:  models.CodeInternal,
		})
	}

	return c.Status(StatusForCode(appErr.Code)).JSON(ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	})
}
