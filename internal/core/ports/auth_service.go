package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	// Role is honoured only when Actor is an admin.
	Role  string
	Actor *domain.Session
}

// LoginInput carries login credentials. Identifier is a username or email.
type LoginInput struct {
	Identifier string
	Password   string
	RememberMe bool
}

// AuthResult is returned by every operation that issues a token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// AuthService defines the account authentication use cases.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, session *domain.Session) (*AuthResult, error)
	Profile(ctx context.Context, session *domain.Session) (*domain.User, error)
}

// ChangePasswordInput carries a password change. Current is required when
// the actor changes their own password.
type ChangePasswordInput struct {
	Current string
	New     string
}

// UserService defines account management use cases. Every method receives
// the acting session and enforces its own authorization rules.
type UserService interface {
	Get(ctx context.Context, actor *domain.Session, id string) (*domain.User, error)
	List(ctx context.Context, actor *domain.Session) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, actor *domain.Session, id string, update ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, actor *domain.Session, id string, input ChangePasswordInput) error
	UpdateRole(ctx context.Context, actor *domain.Session, id, role string) (*domain.User, error)
	SetActive(ctx context.Context, actor *domain.Session, id string, active bool) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.Session, id string) error
}
