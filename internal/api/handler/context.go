package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fixapp/fixapp-api/internal/core/domain"
)

// ctxUser extracts the authenticated user injected by the Auth middleware.
// Its absence means the route was wired without the middleware; reject
// with 401 rather than proceeding unauthenticated.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get("user").(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	return user, nil
}
