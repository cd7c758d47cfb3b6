package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// IssuedToken is a freshly signed token and the instant it stops being valid.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenCodec signs and verifies bearer tokens.
type TokenCodec interface {
	// Issue signs a token for user. A ttl <= 0 selects the codec default.
	Issue(user *domain.User, ttl time.Duration) (IssuedToken, error)
	// Verify returns the claims of a valid token, domain.ErrTokenExpired for a
	// correctly signed token past its expiry, or domain.ErrTokenInvalid.
	Verify(token string) (*domain.Claims, error)
}

// Authenticator resolves a raw token into a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}
