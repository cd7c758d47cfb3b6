// Package token signs and verifies the API's bearer tokens as HS256 JWTs.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const defaultTTL = 7 * 24 * time.Hour

// Config captures the settings of a JWTCodec.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	// TTL is the default token lifetime. Defaults to 7 days.
	TTL time.Duration
}

// JWTCodec implements ports.TokenCodec.
type JWTCodec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

var _ ports.TokenCodec = (*JWTCodec)(nil)

// claims is the JWT payload. The identity fields duplicate the live record
// at issuance time.
type claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   bool   `json:"is_active"`
	jwt.RegisteredClaims
}

// NewJWTCodec returns a codec for cfg. It fails when no secret is configured;
// there is no fallback key.
func NewJWTCodec(cfg Config) (*JWTCodec, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, domain.ErrSigningKeyMissing
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &JWTCodec{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Issue signs a token for user valid for ttl, or the default lifetime when
// ttl <= 0.
func (c *JWTCodec) Issue(user *domain.User, ttl time.Duration) (ports.IssuedToken, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now().UTC()
	exp := jwt.NewNumericDate(now.Add(ttl))

	payload := claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		Active:   user.Active,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(c.secret)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return ports.IssuedToken{Token: signed, ExpiresAt: exp.Time}, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry. The
// signature is checked first, so a tampered token is invalid even if it is
// also past its expiry.
func (c *JWTCodec) Verify(tokenString string) (*domain.Claims, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(tokenString, &cl,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if cl.Subject == "" || cl.UserID != cl.Subject {
		return nil, fmt.Errorf("%w: subject mismatch", domain.ErrTokenInvalid)
	}

	out := &domain.Claims{
		TokenID:  cl.RegisteredClaims.ID,
		UserID:   cl.UserID,
		Username: cl.Username,
		Email:    cl.Email,
		Role:     domain.Role(cl.Role),
		Active:   cl.Active,
		Issuer:   cl.Issuer,
		Audience: cl.Audience,
	}
	if cl.IssuedAt != nil {
		out.IssuedAt = cl.IssuedAt.Time
	}
	if cl.ExpiresAt != nil {
		out.ExpiresAt = cl.ExpiresAt.Time
	}
	return out, nil
}

// classify maps parser errors to the two outcomes callers distinguish.
// Expiry only wins when nothing else about the token is wrong.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
}
