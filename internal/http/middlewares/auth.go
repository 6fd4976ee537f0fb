package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "taskboard.com/taskboard/internal/errors"
	"taskboard.com/taskboard/internal/policy"
)

const identityKey = "identity"

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (policy.Identity, error)
}

// Authenticate resolves the caller from the Authorization header. Both
// "Bearer <token>" and a bare token are accepted.
func Authenticate(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return apperrors.ErrUnauthorized
			}

			identity, err := resolver.ResolveIdentity(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return apperrors.ErrUnauthorized
			}
			if err := policy.AuthorizeAdmin(identity); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func IdentityFrom(c echo.Context) (policy.Identity, bool) {
	identity, ok := c.Get(identityKey).(policy.Identity)
	return identity, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
