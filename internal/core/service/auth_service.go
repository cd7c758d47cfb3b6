package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const (
	bcryptCost         = 12
	defaultTokenTTL    = 7 * 24 * time.Hour
	defaultRememberTTL = 30 * 24 * time.Hour
)

// TokenPolicy selects token lifetimes for login.
type TokenPolicy struct {
	TTL         time.Duration
	RememberTTL time.Duration
}

// AuthService implements registration, login and token refresh.
type AuthService struct {
	repo   ports.UserRepository
	codec  ports.TokenCodec
	policy TokenPolicy
	log    zerolog.Logger
	now    func() time.Time
	// decoy carries a bcrypt hash at production cost. Unknown identifiers
	// are compared against it so both login failures cost the same.
	decoy func() *domain.User
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(repo ports.UserRepository, codec ports.TokenCodec, policy TokenPolicy, log zerolog.Logger) *AuthService {
	if policy.TTL <= 0 {
		policy.TTL = defaultTokenTTL
	}
	if policy.RememberTTL <= 0 {
		policy.RememberTTL = defaultRememberTTL
	}
	return &AuthService{
		repo:   repo,
		codec:  codec,
		policy: policy,
		log:    log,
		now:    time.Now,
		decoy:  sync.OnceValue(decoyUser),
	}
}

func decoyUser() *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("no account matches this identifier"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("service: build decoy hash: %v", err))
	}
	return &domain.User{PasswordHash: string(hash)}
}

// Register creates an active account. Only an authenticated admin may pick
// the role of the new account; anyone else gets RoleUser.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	username := domain.NormalizeIdentifier(in.Username)
	email := domain.NormalizeIdentifier(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	role := domain.RoleUser
	if in.Role != "" && in.Actor != nil && in.Actor.Role == domain.RoleAdmin {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, storeError("create user", err)
	}

	result, err := s.issue(created, s.policy.TTL)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", created.ID).
		Str("username", created.Username).
		Str("role", string(created.Role)).
		Msg("user registered")
	return result, nil
}

// Login checks credentials against active accounts only. An unknown
// identifier and a wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	if in.Identifier == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByIdentifier(ctx, domain.NormalizeIdentifier(in.Identifier), true)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.repo.VerifySecret(s.decoy(), in.Password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, storeError("find user", err)
	}
	if !s.repo.VerifySecret(user, in.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	ttl := s.policy.TTL
	if in.RememberMe {
		ttl = s.policy.RememberTTL
	}
	result, err := s.issue(user, ttl)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Bool("remember_me", in.RememberMe).
		Msg("user logged in")
	return result, nil
}

// Refresh issues a new default-lifetime token from the live record.
func (s *AuthService) Refresh(ctx context.Context, session *domain.Session) (*ports.AuthResult, error) {
	user, err := s.live(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.issue(user, s.policy.TTL)
}

// Profile returns the live record behind session.
func (s *AuthService) Profile(ctx context.Context, session *domain.Session) (*domain.User, error) {
	return s.live(ctx, session)
}

func (s *AuthService) live(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if session == nil {
		return nil, domain.Unauthenticated(domain.ReasonAbsent)
	}
	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Unauthenticated(domain.ReasonInactive)
		}
		return nil, storeError("find user", err)
	}
	if !user.Active {
		return nil, domain.Unauthenticated(domain.ReasonInactive)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User, ttl time.Duration) (*ports.AuthResult, error) {
	tok, err := s.codec.Issue(user, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{User: user, Token: tok.Token, ExpiresAt: tok.ExpiresAt, TTL: ttl}, nil
}

// storeError passes domain outcomes through and marks everything else as a
// store failure the caller may retry.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUserExists) {
		return err
	}
	return domain.Transient(fmt.Errorf("%s: %w", op, err))
}
