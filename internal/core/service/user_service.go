package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/authz"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// UserService implements account management. Users may always act on their
// own record; acting on someone else's requires admin.
type UserService struct {
	repo  ports.UserRepository
	authz *authz.Authorizer
	log   zerolog.Logger
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(repo ports.UserRepository, authorizer *authz.Authorizer, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, authz: authorizer, log: log}
}

// Get returns a user record. Users may read their own account; moderators
// and above may read any account.
func (s *UserService) Get(ctx context.Context, actor *domain.Session, id string) (*domain.User, error) {
	id = target(actor, id)
	if err := check(actor, s.authz.SelfOr(id, s.authz.MinRole(domain.RoleModerator))); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find user", err)
	}
	return user, nil
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context, actor *domain.Session) ([]*domain.User, error) {
	if err := check(actor, s.authz.ExactRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

// UpdateProfile edits names and email. An empty id means the actor's own record.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.Session, id string, update ports.ProfileUpdate) (*domain.User, error) {
	id = target(actor, id)
	if err := check(actor, s.authz.SelfOr(id, s.authz.MinRole(domain.RoleAdmin))); err != nil {
		return nil, err
	}

	if update.Email != nil {
		email := domain.NormalizeIdentifier(*update.Email)
		if email == "" {
			return nil, domain.ErrInvalidInput
		}
		update.Email = &email
	}
	for _, name := range []*string{update.FirstName, update.LastName} {
		if name != nil {
			*name = strings.TrimSpace(*name)
		}
	}

	user, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, storeError("update profile", err)
	}

	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", id).Msg("profile updated")
	return user, nil
}

// ChangePassword replaces a password. The owner must prove the current one;
// an admin resetting another account does not.
func (s *UserService) ChangePassword(ctx context.Context, actor *domain.Session, id string, in ports.ChangePasswordInput) error {
	id = target(actor, id)
	if err := check(actor, s.authz.SelfOr(id, s.authz.MinRole(domain.RoleAdmin))); err != nil {
		return err
	}
	if in.New == "" {
		return domain.ErrInvalidInput
	}

	if id == actor.UserID {
		user, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return storeError("find user", err)
		}
		if !s.repo.VerifySecret(user, in.Current) {
			return domain.ErrInvalidPassword
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return storeError("update password", err)
	}

	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", id).Msg("password changed")
	return nil
}

// UpdateRole assigns a role. Admin only.
func (s *UserService) UpdateRole(ctx context.Context, actor *domain.Session, id, role string) (*domain.User, error) {
	if err := check(actor, s.authz.ExactRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.UpdateRole(ctx, id, r)
	if err != nil {
		return nil, storeError("update role", err)
	}

	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", id).Str("role", role).Msg("role updated")
	return user, nil
}

// SetActive activates or deactivates an account. Deactivation invalidates
// every outstanding token of the account on its next use. Admin only.
func (s *UserService) SetActive(ctx context.Context, actor *domain.Session, id string, active bool) (*domain.User, error) {
	if err := check(actor, s.authz.ExactRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	if id == actor.UserID && !active {
		return nil, domain.ErrCannotDisableSelf
	}
	user, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, storeError("set active", err)
	}

	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", id).Bool("active", active).Msg("account status changed")
	return user, nil
}

// Delete removes an account. Admin only, and never the admin's own.
func (s *UserService) Delete(ctx context.Context, actor *domain.Session, id string) error {
	if err := check(actor, s.authz.ExactRole(domain.RoleAdmin)); err != nil {
		return err
	}
	if id == actor.UserID {
		return domain.ErrCannotDeleteSelf
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete user", err)
	}

	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", id).Msg("user deleted")
	return nil
}

func target(actor *domain.Session, id string) string {
	if id == "" && actor != nil {
		return actor.UserID
	}
	return id
}

func check(actor *domain.Session, gates ...authz.Gate) error {
	return authz.Evaluate(actor, gates...).Err
}
