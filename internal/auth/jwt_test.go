package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

const (
	testSecret = "test-secret-at-least-32-chars-long-for-security"
	testIssuer = "bazaar-test"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustIssue(t *testing.T, m *JWTManager, id domain.Identity) string {
	t.Helper()
	tok, err := m.GenerateAccessToken(id)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return tok
}

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, testIssuer, 15*time.Minute)
	id := domain.Identity{UserID: "uid-123", Email: "donor@example.com"}

	got, err := m.ValidateAccessToken(mustIssue(t, m, id))
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if got != id {
		t.Errorf("identity = %+v, want %+v", got, id)
	}
}

func TestJWTManager_GenerateRequiresSubject(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, testIssuer, time.Minute)

	_, err := m.GenerateAccessToken(domain.Identity{UserID: "  ", Email: "x@example.com"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestJWTManager_Expiry(t *testing.T) {
	t.Parallel()

	issuer := NewJWTManager(testSecret, testIssuer, 10*time.Minute, WithClock(fixedClock(epoch)))
	tok := mustIssue(t, issuer, domain.Identity{UserID: "u1"})

	tests := []struct {
		name    string
		at      time.Time
		leeway  time.Duration
		wantErr error
	}{
		{name: "fresh", at: epoch.Add(time.Minute)},
		{name: "expired", at: epoch.Add(11 * time.Minute), wantErr: ErrTokenExpired},
		{name: "expired within leeway", at: epoch.Add(10*time.Minute + 20*time.Second), leeway: 30 * time.Second},
		{name: "expired past leeway", at: epoch.Add(11 * time.Minute), leeway: 30 * time.Second, wantErr: ErrTokenExpired},
		{name: "issued in the future", at: epoch.Add(-time.Minute), wantErr: domain.ErrUnauthorized},
		{name: "future within leeway", at: epoch.Add(-10 * time.Second), leeway: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewJWTManager(testSecret, testIssuer, time.Minute, WithClock(fixedClock(tt.at)), WithLeeway(tt.leeway))
			_, err := v.ValidateAccessToken(tok)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("err = %v does not wrap ErrUnauthorized", err)
			}
		})
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, testIssuer, time.Minute)
	valid := mustIssue(t, m, domain.Identity{UserID: "u1"})

	claims := func(sub string, exp *jwt.NumericDate) identityClaims {
		return identityClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    testIssuer,
			ExpiresAt: exp,
		}}
	}
	inAMinute := jwt.NewNumericDate(time.Now().Add(time.Minute))

	sign := func(method jwt.SigningMethod, key any, c identityClaims) string {
		t.Helper()
		tok, err := jwt.NewWithClaims(method, c).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return tok
	}

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"three segments": "a.b.c",
		"tampered":       valid + "x",
		"wrong secret": mustIssue(t,
			NewJWTManager("another-secret-that-is-also-32-chars-long", testIssuer, time.Minute),
			domain.Identity{UserID: "u1"}),
		"wrong issuer": mustIssue(t,
			NewJWTManager(testSecret, "someone-else", time.Minute),
			domain.Identity{UserID: "u1"}),
		"alg none":      sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claims("u1", inAMinute)),
		"hs512":         sign(jwt.SigningMethodHS512, []byte(testSecret), claims("u1", inAMinute)),
		"no expiry":     sign(jwt.SigningMethodHS256, []byte(testSecret), claims("u1", nil)),
		"blank subject": sign(jwt.SigningMethodHS256, []byte(testSecret), claims(" ", inAMinute)),
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := m.ValidateAccessToken(tok)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("err = %v, want ErrUnauthorized", err)
			}
			if errors.Is(err, ErrTokenExpired) {
				t.Errorf("err = %v, must not report expiry", err)
			}
		})
	}
}
