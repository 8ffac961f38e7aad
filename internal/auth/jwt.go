package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// ErrTokenExpired is returned for a well-formed token past its expiry. It
// wraps domain.ErrUnauthorized like every other validation failure.
var ErrTokenExpired = fmt.Errorf("token expired: %w", domain.ErrUnauthorized)

// JWTManager issues and validates identity tokens. Tokens carry only who the
// caller is; the role is resolved from the caller's profile on each request.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	leeway    time.Duration
	now       func() time.Time
}

// Option configures a JWTManager.
type Option func(*JWTManager)

// WithLeeway tolerates clock skew between issuer and validator.
func WithLeeway(d time.Duration) Option {
	return func(m *JWTManager) { m.leeway = d }
}

// WithClock replaces time.Now for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(m *JWTManager) { m.now = now }
}

// NewJWTManager creates a HS256 manager. secret must be at least 32 bytes;
// config validation enforces that.
func NewJWTManager(secret, issuer string, accessTTL time.Duration, opts ...Option) *JWTManager {
	m := &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type identityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// GenerateAccessToken signs a token whose subject is the identity's user id.
func (m *JWTManager) GenerateAccessToken(id domain.Identity) (string, error) {
	if strings.TrimSpace(id.UserID) == "" {
		return "", domain.NewValidationError("user_id", "required")
	}
	now := m.now()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		Email: strings.TrimSpace(id.Email),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken returns the identity a token was issued to. Every
// failure wraps domain.ErrUnauthorized; expiry is ErrTokenExpired.
func (m *JWTManager) ValidateAccessToken(raw string) (domain.Identity, error) {
	if raw == "" {
		return domain.Identity{}, fmt.Errorf("empty token: %w", domain.ErrUnauthorized)
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, m.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Identity{}, ErrTokenExpired
	case err != nil:
		return domain.Identity{}, fmt.Errorf("parse token: %v: %w", err, domain.ErrUnauthorized)
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return domain.Identity{}, fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}
	return domain.Identity{UserID: sub, Email: claims.Email}, nil
}

func (m *JWTManager) key(*jwt.Token) (any, error) {
	return m.secret, nil
}
