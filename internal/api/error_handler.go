package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/domain"
)

// retryAfterSeconds is advertised on 503 responses caused by a store outage.
const retryAfterSeconds = "1"

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Reason   string        `json:"reason,omitempty"`
	Required []domain.Role `json:"required,omitempty"`
	Current  domain.Role   `json:"current,omitempty"`
	Field    string        `json:"field,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
}

var reasonMessages = map[domain.AuthReason]string{
	domain.ReasonAbsent:   "Access denied. No token provided.",
	domain.ReasonExpired:  "Access denied. Token has expired.",
	domain.ReasonInvalid:  "Access denied. Invalid token.",
	domain.ReasonInactive: "Access denied. User not found or inactive.",
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps authentication, authorization and domain errors to status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": ...}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if code == http.StatusServiceUnavailable {
			c.Response().Header().Set("Retry-After", retryAfterSeconds)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)}
	}

	var (
		ue *domain.UnauthenticatedError
		fe *domain.ForbiddenError
		ce *domain.ConflictError
		ve *handler.ValidationError
	)
	switch {
	case errors.As(err, &ue):
		msg, ok := reasonMessages[ue.Reason]
		if !ok {
			msg = "Access denied."
		}
		return http.StatusUnauthorized, errorResponse{Message: msg, Reason: string(ue.Reason)}
	case errors.As(err, &fe):
		return http.StatusForbidden, errorResponse{
			Message:  "Access denied. Insufficient permissions.",
			Required: fe.Required,
			Current:  fe.Actual,
		}
	case errors.Is(err, domain.ErrTransient):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("dependency unavailable")
		return http.StatusServiceUnavailable, errorResponse{Message: "Service temporarily unavailable. Please retry."}
	case errors.As(err, &ce):
		return http.StatusConflict, errorResponse{Message: ce.Error(), Field: ce.Field}
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, errorResponse{Message: "Validation failed", Errors: ve.Details}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Message: "User not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Message: "User already exists"}
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, errorResponse{Message: "Invalid role"}
	case errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusBadRequest, errorResponse{Message: "Current password is incorrect"}
	case errors.Is(err, domain.ErrCannotDeleteSelf):
		return http.StatusBadRequest, errorResponse{Message: "Cannot delete your own account"}
	case errors.Is(err, domain.ErrCannotDisableSelf):
		return http.StatusBadRequest, errorResponse{Message: "Cannot deactivate your own account"}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Message: "Invalid input"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Message: "Internal server error"}
}
