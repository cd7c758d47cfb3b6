package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func newTestAuthService(repo *stubUserRepo, codec *stubCodec) *AuthService {
	svc := NewAuthService(repo, codec, TokenPolicy{}, zerolog.Nop())
	svc.now = func() time.Time { return codec.now }
	hash, _ := bcrypt.GenerateFromPassword([]byte("decoy"), bcrypt.MinCost)
	svc.decoy = func() *domain.User { return &domain.User{PasswordHash: string(hash)} }
	return svc
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	codec := newStubCodec()
	svc := newTestAuthService(repo, codec)

	res, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "  Alice ",
		Email:    "Alice@Example.com",
		Password: "pass123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Username != "alice" || res.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized identifiers, got %q %q", res.User.Username, res.User.Email)
	}
	if res.User.Role != domain.RoleUser || !res.User.Active {
		t.Fatalf("expected active user role, got %+v", res.User)
	}
	stored := repo.users[res.User.ID]
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if res.Token == "" || res.TTL != defaultTokenTTL {
		t.Fatalf("expected token with default ttl, got %q %v", res.Token, res.TTL)
	}
}

func TestAuthService_Register_RoleAssignment(t *testing.T) {
	cases := []struct {
		name  string
		actor *domain.Session
		role  string
		want  domain.Role
	}{
		{name: "anonymous", actor: nil, role: "admin", want: domain.RoleUser},
		{name: "non-admin", actor: &domain.Session{UserID: "x", Role: domain.RoleModerator}, role: "admin", want: domain.RoleUser},
		{name: "admin", actor: &domain.Session{UserID: "x", Role: domain.RoleAdmin}, role: "moderator", want: domain.RoleModerator},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestAuthService(newStubUserRepo(), newStubCodec())
			res, err := svc.Register(context.Background(), ports.RegisterInput{
				Username: "frank", Email: "frank@example.com", Password: "pw", Role: tc.role, Actor: tc.actor,
			})
			if err != nil {
				t.Fatalf("Register returned error: %v", err)
			}
			if res.User.Role != tc.want {
				t.Fatalf("expected role %q, got %q", tc.want, res.User.Role)
			}
		})
	}
}

func TestAuthService_Register_Errors(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "alice", domain.RoleUser, "pw")
	svc := newTestAuthService(repo, newStubCodec())
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "", Email: "x@example.com", Password: "pw"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err := svc.Register(ctx, ports.RegisterInput{Username: "ALICE", Email: "other@example.com", Password: "pw"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "username" {
		t.Fatalf("expected username conflict, got %v", err)
	}

	// only an admin's requested role is parsed
	user := &domain.Session{UserID: "u9", Role: domain.RoleUser}
	res, err := svc.Register(ctx, ports.RegisterInput{Username: "f", Email: "f@example.com", Password: "pw", Role: "owner", Actor: user})
	if err != nil || res.User.Role != domain.RoleUser {
		t.Fatalf("expected non-admin role request to be ignored, got %v %v", res, err)
	}

	admin := &domain.Session{UserID: "root", Role: domain.RoleAdmin}
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "g", Email: "g@example.com", Password: "pw", Role: "owner", Actor: admin}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAuthService_Login_Lifetimes(t *testing.T) {
	repo := newStubUserRepo()
	codec := newStubCodec()
	repo.seed(t, "alice", domain.RoleUser, "pw")
	svc := newTestAuthService(repo, codec)

	res, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if want := codec.now.Add(7 * 24 * time.Hour); !res.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, res.ExpiresAt)
	}

	res, err = svc.Login(context.Background(), ports.LoginInput{Identifier: "ALICE@example.com", Password: "pw", RememberMe: true})
	if err != nil {
		t.Fatalf("Login by email returned error: %v", err)
	}
	if want := codec.now.Add(30 * 24 * time.Hour); !res.ExpiresAt.Equal(want) {
		t.Fatalf("expected remember-me expiry %v, got %v", want, res.ExpiresAt)
	}
	if res.TTL != defaultRememberTTL {
		t.Fatalf("expected remember ttl, got %v", res.TTL)
	}
}

func TestAuthService_Login_RecordsLastLogin(t *testing.T) {
	repo := newStubUserRepo()
	codec := newStubCodec()
	alice := repo.seed(t, "alice", domain.RoleUser, "pw")
	svc := newTestAuthService(repo, codec)

	res, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	stored := repo.users[alice.ID].LastLogin
	if stored == nil || !stored.Equal(codec.now) {
		t.Fatalf("expected last login %v, got %v", codec.now, stored)
	}
	if res.User.LastLogin == nil {
		t.Fatalf("expected returned user to carry last login")
	}
}

func TestAuthService_Login_LastLoginFailureIsNotFatal(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "alice", domain.RoleUser, "pw")
	repo.lastLoginErr = errors.New("write conflict")
	svc := newTestAuthService(repo, newStubCodec())

	if _, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := newStubUserRepo()
	inactive := repo.seed(t, "ivan", domain.RoleUser, "pw")
	repo.users[inactive.ID].Active = false
	repo.seed(t, "alice", domain.RoleUser, "pw")
	svc := newTestAuthService(repo, newStubCodec())

	cases := []struct {
		name string
		in   ports.LoginInput
	}{
		{name: "unknown user", in: ports.LoginInput{Identifier: "nobody", Password: "pw"}},
		{name: "wrong password", in: ports.LoginInput{Identifier: "alice", Password: "nope"}},
		{name: "inactive account", in: ports.LoginInput{Identifier: "ivan", Password: "pw"}},
		{name: "empty password", in: ports.LoginInput{Identifier: "alice"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_Login_FailuresCompareAHash(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "alice", domain.RoleUser, "pw")
	svc := newTestAuthService(repo, newStubCodec())

	for _, identifier := range []string{"nobody", "alice"} {
		repo.verified = nil
		if _, err := svc.Login(context.Background(), ports.LoginInput{Identifier: identifier, Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", identifier, err)
		}
		if len(repo.verified) != 1 || repo.verified[0].PasswordHash == "" {
			t.Fatalf("%s: expected one comparison against a real hash, got %+v", identifier, repo.verified)
		}
	}
}

func TestDecoyUser_UsesProductionCost(t *testing.T) {
	cost, err := bcrypt.Cost([]byte(decoyUser().PasswordHash))
	if err != nil || cost != bcryptCost {
		t.Fatalf("expected cost %d, got %d (%v)", bcryptCost, cost, err)
	}
}

func TestAuthService_RefreshAndProfile(t *testing.T) {
	repo := newStubUserRepo()
	codec := newStubCodec()
	alice := repo.seed(t, "alice", domain.RoleUser, "pw")
	svc := newTestAuthService(repo, codec)
	session := sessionFor(alice)

	res, err := svc.Refresh(context.Background(), session)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if codec.lastTTL != defaultTokenTTL {
		t.Fatalf("expected refresh with default ttl, got %v", codec.lastTTL)
	}
	if res.User.ID != alice.ID {
		t.Fatalf("unexpected user %q", res.User.ID)
	}

	repo.users[alice.ID].Active = false
	if _, err := svc.Profile(context.Background(), session); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for inactive account, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated without session, got %v", err)
	}
}

func TestAuthService_StoreFailureIsTransient(t *testing.T) {
	repo := newStubUserRepo()
	alice := repo.seed(t, "alice", domain.RoleUser, "pw")
	repo.findErr = errors.New("socket closed")
	svc := newTestAuthService(repo, newStubCodec())

	if _, err := svc.Profile(context.Background(), sessionFor(alice)); !domain.IsRetryable(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
