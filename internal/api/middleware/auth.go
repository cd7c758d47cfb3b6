package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/credential"
	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// SessionKey is the echo context key holding the *domain.Session.
const SessionKey = "session"

const (
	modeRequired = "required"
	modeOptional = "optional"
)

// Authentication extracts the request credential, resolves it through the
// Authenticator and attaches the live session to the echo and request
// contexts.
type Authentication struct {
	transport *credential.Transport
	auth      ports.Authenticator
	log       zerolog.Logger
}

func NewAuthentication(transport *credential.Transport, auth ports.Authenticator, log zerolog.Logger) *Authentication {
	return &Authentication{transport: transport, auth: auth, log: log}
}

// Required rejects the request unless it carries a valid credential for an
// active account. Rejections are returned as domain errors for the HTTP
// error handler to render.
func (m *Authentication) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := m.authenticate(c, modeRequired)
			if err != nil {
				return err
			}
			attach(c, session)
			return next(c)
		}
	}
}

// Optional attaches a session when the credential resolves and otherwise
// lets the request through anonymously.
func (m *Authentication) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := m.authenticate(c, modeOptional)
			if err == nil {
				attach(c, session)
			} else if domain.IsRetryable(err) {
				m.log.Warn().Err(err).Str("path", c.Path()).Msg("optional authentication unavailable, continuing anonymously")
			}
			return next(c)
		}
	}
}

func (m *Authentication) authenticate(c echo.Context, mode string) (*domain.Session, error) {
	req := c.Request()
	token, _ := m.transport.Extract(req)

	session, err := m.auth.Authenticate(req.Context(), token)
	if err == nil {
		metrics.AuthAttemptsTotal.WithLabelValues(mode, "ok").Inc()
		return session, nil
	}

	var ue *domain.UnauthenticatedError
	if !errors.As(err, &ue) {
		metrics.AuthAttemptsTotal.WithLabelValues(mode, "transient").Inc()
		return nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues(mode, string(ue.Reason)).Inc()

	// A cookie that failed verification or names a gone account is useless;
	// evict it in both modes. Absent tokens leave nothing to clear.
	if ue.Reason != domain.ReasonAbsent && m.transport.Carried(req) {
		m.transport.Clear(c.Response())
		metrics.CookiesClearedTotal.WithLabelValues(string(ue.Reason)).Inc()
	}

	if ue.Reason != domain.ReasonAbsent {
		m.log.Debug().
			Str("mode", mode).
			Str("reason", string(ue.Reason)).
			Str("path", c.Path()).
			Msg("authentication rejected")
	}
	return nil, err
}

func attach(c echo.Context, session *domain.Session) {
	c.Set(SessionKey, session)
	req := c.Request()
	c.SetRequest(req.WithContext(domain.ContextWithSession(req.Context(), session)))
}

// SessionFrom returns the session attached by the authentication
// middleware, or nil for anonymous requests.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(SessionKey).(*domain.Session)
	return s
}
