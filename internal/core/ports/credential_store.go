package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// CredentialStore is what the authentication core needs from persistence.
// Lookups return domain.ErrUserNotFound when no record matches; any other
// error is treated as the store being unavailable.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIdentifier matches username or email case-insensitively. With
	// activeOnly set, inactive users are reported as not found.
	FindByIdentifier(ctx context.Context, identifier string, activeOnly bool) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	VerifySecret(user *domain.User, candidate string) bool
}

// ProfileUpdate holds the optional fields of a profile edit. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// UserRepository extends CredentialStore with the writes used by account
// management. Create and UpdateProfile return a domain.ConflictError when a
// unique field collides.
type UserRepository interface {
	CredentialStore

	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
