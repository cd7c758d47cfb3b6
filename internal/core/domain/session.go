package domain

import (
	"context"
	"time"
)

// Claims is the decoded content of a verified token. The Role and Active
// fields are a snapshot taken at issuance and may be stale.
type Claims struct {
	TokenID   string
	UserID    string
	Username  string
	Email     string
	Role      Role
	Active    bool
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is the request-scoped identity attached after authentication.
// Everything except ExpiresAt comes from the live user record.
type Session struct {
	UserID    string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"is_active"`
	ExpiresAt time.Time `json:"token_expiry"`
}

// NewSession builds a session from the live user and the token claims.
func NewSession(u *User, claims *Claims) *Session {
	return &Session{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		ExpiresAt: claims.ExpiresAt,
	}
}

type sessionKey struct{}

// ContextWithSession returns ctx carrying s.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored in ctx, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
