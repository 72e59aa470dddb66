// Package middleware provides authentication, logging, rate limiting and
// tracing middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals set by AuthRequired and TracingMiddleware.
const (
	LocalUserID   = "userID"
	LocalIdentity = "identity"
	LocalTraceID  = "traceID"
)

// Authenticator resolves a bearer access token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Identity, error)
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(c, err)
		}

		id, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, err)
		}

		c.Locals(LocalUserID, id.ID)
		c.Locals(LocalIdentity, id)
		ctx := auth.ContextWithIdentity(c.UserContext(), id)
		c.SetUserContext(observability.WithUserID(ctx, id.ID))

		return c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", models.NewUnauthenticatedError("Authorization header required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], auth.TokenTypeBearer) || strings.TrimSpace(parts[1]) == "" {
		return "", models.NewUnauthenticatedError("Invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// IdentityFrom returns the identity set by AuthRequired, or nil.
func IdentityFrom(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(LocalIdentity).(*auth.Identity)
	return id
}

func unauthorized(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code == models.CodeInternal {
		observability.Logger.ErrorContext(c.UserContext(), "authentication failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
			"code":  models.CodeInternal,
		})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}
