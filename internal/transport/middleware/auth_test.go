package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/pkg/ctxutil"
)

func validTokens() *tokenValidatorMock {
	return &tokenValidatorMock{
		ValidateAccessTokenFunc: func(token string) (domain.Identity, error) {
			if token == "valid-token" {
				return domain.Identity{UserID: "u1", Email: "u1@example.com"}, nil
			}
			return domain.Identity{}, errors.New("invalid token")
		},
	}
}

func donorResolver() *actorResolverMock {
	return &actorResolverMock{
		ResolveFunc: func(ctx context.Context, id domain.Identity) (domain.Actor, error) {
			return domain.DonorActor(id), nil
		},
	}
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth_ValidToken(t *testing.T) {
	resolver := donorResolver()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ctxutil.ActorFromCtx(r.Context())
		if !ok {
			t.Error("expected actor in context")
			return
		}
		if actor.ID != "u1" || actor.Role != domain.RoleDonor {
			t.Errorf("unexpected actor %+v", actor)
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := serve(Auth(validTokens(), resolver, slog.Default())(handler), "Bearer valid-token")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if calls := resolver.ResolveCalls(); len(calls) != 1 || calls[0].ID.Email != "u1@example.com" {
		t.Errorf("Resolve calls: %+v", calls)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for invalid token")
	})

	rec := serve(Auth(validTokens(), &actorResolverMock{}, slog.Default())(handler), "Bearer invalid-token")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuth_Anonymous(t *testing.T) {
	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer "} {
		validator := &tokenValidatorMock{}
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ctxutil.ActorFromCtx(r.Context()); ok {
				t.Error("expected no actor in context for anonymous request")
			}
			w.WriteHeader(http.StatusOK)
		})

		rec := serve(Auth(validator, &actorResolverMock{}, slog.Default())(handler), header)

		if rec.Code != http.StatusOK {
			t.Errorf("%q: expected status %d, got %d", header, http.StatusOK, rec.Code)
		}
		if len(validator.ValidateAccessTokenCalls()) > 0 {
			t.Errorf("%q: ValidateAccessToken should not be called", header)
		}
	}
}

func TestAuth_ResolveFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad profile", fmt.Errorf("role %q: %w", "root", domain.ErrValidation), http.StatusForbidden},
		{"store down", fmt.Errorf("profiles: %w", domain.ErrTransient), http.StatusServiceUnavailable},
		{"no subject", domain.ErrUnauthorized, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &actorResolverMock{
				ResolveFunc: func(ctx context.Context, id domain.Identity) (domain.Actor, error) {
					return domain.Actor{}, tt.err
				},
			}
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			})

			rec := serve(Auth(validTokens(), resolver, slog.Default())(handler), "Bearer valid-token")
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireActor(t *testing.T) {
	handler := RequireActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected %d, got %d", http.StatusUnauthorized, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ctxutil.WithActor(req.Context(), domain.Actor{ID: "u1", Role: domain.RoleDonor}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("actor: expected %d, got %d", http.StatusOK, rec.Code)
	}
}
