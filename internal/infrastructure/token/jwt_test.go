package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskmanager/task-api/internal/core/domain"
)

const testSecret = "test-secret-key-for-jwt-signing"

func newTestCodec(t *testing.T) *JWTCodec {
	t.Helper()
	c, err := NewJWTCodec(Config{Secret: testSecret, Issuer: "task-api", Audience: "task-api-users"})
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	return c
}

func alice() *domain.User {
	return &domain.User{
		ID:       "64f1c0ffee0000000000a11c",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.RoleUser,
		Active:   true,
	}
}

func TestNewJWTCodec_RequiresSecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		if _, err := NewJWTCodec(Config{Secret: secret}); !errors.Is(err, domain.ErrSigningKeyMissing) {
			t.Fatalf("secret %q: expected ErrSigningKeyMissing, got %v", secret, err)
		}
	}
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)
	u := alice()

	issued, err := c.Issue(u, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := c.Verify(issued.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UserID != u.ID || got.Username != u.Username || got.Email != u.Email || got.Role != u.Role {
		t.Fatalf("claims do not match identity: %+v", got)
	}
	if !got.Active {
		t.Fatalf("expected active snapshot")
	}
	if got.Issuer != "task-api" || len(got.Audience) != 1 || got.Audience[0] != "task-api-users" {
		t.Fatalf("unexpected issuer/audience: %s %v", got.Issuer, got.Audience)
	}
	if got.TokenID == "" {
		t.Fatalf("expected jti")
	}
	if !got.ExpiresAt.Equal(issued.ExpiresAt) {
		t.Fatalf("expiry mismatch: %v vs %v", got.ExpiresAt, issued.ExpiresAt)
	}
}

func TestJWTCodec_Lifetimes(t *testing.T) {
	c := newTestCodec(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"default", 0, 7 * 24 * time.Hour},
		{"remember me", 30 * 24 * time.Hour, 30 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issued, err := c.Issue(alice(), tt.ttl)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			if got := issued.ExpiresAt.Sub(fixed); got != tt.want {
				t.Fatalf("expected lifetime %v, got %v", tt.want, got)
			}
		})
	}
}

func TestJWTCodec_Expired(t *testing.T) {
	c := newTestCodec(t)
	c.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	issued, err := c.Issue(alice(), 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	c.now = time.Now
	_, err = c.Verify(issued.Token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expired token must not be reported as invalid")
	}
}

func TestJWTCodec_TamperedSignature(t *testing.T) {
	c := newTestCodec(t)
	issued, err := c.Issue(alice(), 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(issued.Token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = c.Verify(tampered)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("tampered token must not be reported as expired")
	}
}

func TestJWTCodec_ExpiredWithForeignKeyIsInvalid(t *testing.T) {
	c := newTestCodec(t)

	other, err := NewJWTCodec(Config{Secret: "another-secret", Issuer: "task-api", Audience: "task-api-users"})
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	other.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	foreign, err := other.Issue(alice(), 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := c.Verify(foreign.Token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTCodec_Invalid(t *testing.T) {
	c := newTestCodec(t)

	sign := func(method jwt.SigningMethod, key any, mc jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(method, mc).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"id":  "u1",
			"sub": "u1",
			"iss": "task-api",
			"aud": "task-api-users",
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	wrongIssuer := base()
	wrongIssuer["iss"] = "someone-else"
	wrongAudience := base()
	wrongAudience["aud"] = "other-app"
	noExpiry := base()
	delete(noExpiry, "exp")
	noSubject := base()
	delete(noSubject, "sub")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt-token"},
		{"malformed", "header.payload.signature"},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"wrong audience", sign(jwt.SigningMethodHS256, []byte(testSecret), wrongAudience)},
		{"missing expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"missing subject", sign(jwt.SigningMethodHS256, []byte(testSecret), noSubject)},
		{"other hmac alg", sign(jwt.SigningMethodHS512, []byte(testSecret), base())},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, base())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Verify(tt.token); !errors.Is(err, domain.ErrTokenInvalid) {
				t.Fatalf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}
