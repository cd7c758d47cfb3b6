package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
)

// ctxSession returns the session attached by the authentication middleware.
// Routes mounted behind Required always have one; its absence means the
// route was wired without the middleware and is treated as unauthenticated.
func ctxSession(c echo.Context) (*domain.Session, error) {
	s := middleware.SessionFrom(c)
	if s == nil {
		return nil, domain.Unauthenticated(domain.ReasonAbsent)
	}
	return s, nil
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
