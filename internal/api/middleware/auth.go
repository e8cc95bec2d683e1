package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fixapp/fixapp-api/internal/api/metrics"
	"github.com/fixapp/fixapp-api/internal/core/domain"
	"github.com/fixapp/fixapp-api/internal/core/ports"
)

// BearerToken parses the Authorization header into its bearer token. The
// header contract lives here; handlers reuse it rather than re-parsing.
func BearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

// Auth validates the bearer session token and injects the owning user and
// session into the request context. Absent and expired tokens get the same
// 401 so the boundary never reveals which. Storage faults are not token
// problems: they propagate to the central error handler instead of telling
// the client to discard a possibly valid session.
func Auth(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, err := BearerToken(c)
			if err != nil {
				return err
			}

			user, session, err := sessions.Validate(c.Request().Context(), tok)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					metrics.SessionValidationsTotal.WithLabelValues("invalid").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
				}
				return err
			}

			metrics.SessionValidationsTotal.WithLabelValues("valid").Inc()
			c.Set("user", user)
			c.Set("session", session)

			return next(c)
		}
	}
}
