package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const defaultLookupTimeout = 3 * time.Second

// Authenticator turns a raw token into a session in two stages: the codec
// verifies the token without I/O, then the store re-resolves the identity so
// that role changes and deactivation take effect before the token expires.
type Authenticator struct {
	codec         ports.TokenCodec
	store         ports.CredentialStore
	lookupTimeout time.Duration
	log           zerolog.Logger
}

var _ ports.Authenticator = (*Authenticator)(nil)

// NewAuthenticator returns an Authenticator. lookupTimeout caps the identity
// lookup; the request deadline still applies when it is shorter.
func NewAuthenticator(codec ports.TokenCodec, store ports.CredentialStore, lookupTimeout time.Duration, log zerolog.Logger) *Authenticator {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &Authenticator{codec: codec, store: store, lookupTimeout: lookupTimeout, log: log}
}

// Authenticate returns the live session for token, or one of
// domain.UnauthenticatedError and domain.TransientError.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.Unauthenticated(domain.ReasonAbsent)
	}

	claims, err := a.codec.Verify(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.Unauthenticated(domain.ReasonExpired)
		}
		a.log.Debug().Err(err).Msg("token rejected")
		return nil, domain.Unauthenticated(domain.ReasonInvalid)
	}

	user, err := a.resolve(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return domain.NewSession(user, claims), nil
}

func (a *Authenticator) resolve(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, a.lookupTimeout)
	defer cancel()

	user, err := a.store.FindByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil, domain.Unauthenticated(domain.ReasonInactive)
	case err != nil:
		a.log.Warn().Err(err).Str("user_id", id).Msg("identity lookup failed")
		return nil, domain.Transient(fmt.Errorf("resolve identity: %w", err))
	case user == nil, !user.Active:
		return nil, domain.Unauthenticated(domain.ReasonInactive)
	}
	return user, nil
}
