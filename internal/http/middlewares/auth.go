package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/internal/session"
	"task-tracker.com/task-tracker/pkg/constants"
)

const identityKey = "identity"

// RequireAuth verifies the bearer token and stores the caller's identity on
// the context. Revoked tokens are rejected like invalid ones.
func RequireAuth(tokens *auth.TokenService, denylist session.Denylist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return apperrors.ErrMissingToken
			}

			identity, err := tokens.Verify(raw)
			if err != nil {
				return apperrors.ErrInvalidToken
			}

			revoked, err := denylist.IsRevoked(c.Request().Context(), identity.TokenID)
			if err != nil {
				return err
			}
			if revoked {
				return apperrors.ErrInvalidToken
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// RequireManager must run after RequireAuth.
func RequireManager() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return apperrors.ErrMissingToken
			}

			switch identity.Role {
			case constants.RoleManager:
				return next(c)
			case constants.RoleUser:
				return apperrors.ErrManagerRequired
			default:
				return apperrors.ErrManagerRequired
			}
		}
	}
}

func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	identity, ok := c.Get(identityKey).(auth.Identity)
	return identity, ok
}
