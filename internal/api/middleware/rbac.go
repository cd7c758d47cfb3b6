package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/authz"
	"github.com/taskmanager/task-api/internal/core/domain"
)

// Authorize runs gates against the session attached by Authentication. The
// first rejection is returned for the HTTP error handler to render; check
// labels the denial metric.
func Authorize(check string, gates ...authz.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			out := authz.Evaluate(SessionFrom(c), gates...)
			if !out.Allowed() {
				metrics.AuthzDeniedTotal.WithLabelValues(check).Inc()
				return out.Err
			}
			return next(c)
		}
	}
}

// RequireExactRole allows only sessions whose role is one of roles.
func RequireExactRole(a *authz.Authorizer, roles ...domain.Role) echo.MiddlewareFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return Authorize("exact:"+strings.Join(names, "|"), a.ExactRole(roles...))
}

// RequireMinRole allows sessions ranking at or above role.
func RequireMinRole(a *authz.Authorizer, role domain.Role) echo.MiddlewareFunc {
	return Authorize("min:"+string(role), a.MinRole(role))
}
