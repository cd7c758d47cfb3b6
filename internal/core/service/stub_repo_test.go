package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// stubUserRepo is an in-memory ports.UserRepository.
type stubUserRepo struct {
	users         map[string]*domain.User
	nextID        int
	findErr       error // if set, FindByID returns it
	block         bool  // if set, FindByID waits for ctx to finish
	findByIDCalls int
	lastLoginErr  error
	verified      []*domain.User // users passed to VerifySecret
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// seed stores a user with a cheap hash of password and returns its copy.
func (r *stubUserRepo) seed(t *testing.T, username string, role domain.Role, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := r.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u
}

func (r *stubUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.findByIDCalls++
	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByIdentifier(_ context.Context, identifier string, activeOnly bool) (*domain.User, error) {
	identifier = strings.ToLower(identifier)
	for _, u := range r.users {
		if u.Username != identifier && u.Email != identifier {
			continue
		}
		if activeOnly && !u.Active {
			continue
		}
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if r.lastLoginErr != nil {
		return r.lastLoginErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) VerifySecret(user *domain.User, candidate string) bool {
	r.verified = append(r.verified, user)
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate)) == nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.Conflict("username")
		}
		if u.Email == user.Email {
			return nil, domain.Conflict("email")
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, update ports.ProfileUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Email != nil {
		for _, other := range r.users {
			if other.ID != id && other.Email == *update.Email {
				return nil, domain.Conflict("email")
			}
		}
		u.Email = *update.Email
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Active = active
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func sessionFor(u *domain.User) *domain.Session {
	return &domain.Session{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, Active: u.Active}
}
