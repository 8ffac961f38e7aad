package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateAccessToken(token string) (domain.Identity, error)
}

type actorResolver interface {
	Resolve(ctx context.Context, id domain.Identity) (domain.Actor, error)
}

// Auth validates the bearer token, resolves the caller's profile once per
// request and stores the actor in the context. Requests without a token pass
// through anonymously.
func Auth(validator tokenValidator, resolver actorResolver, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			identity, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
				return
			}
			actor, err := resolver.Resolve(r.Context(), identity)
			if err != nil {
				logger.WarnContext(r.Context(), "resolve actor",
					slog.String("user_id", identity.UserID),
					slog.String("error", err.Error()),
				)
				switch {
				case errors.Is(err, domain.ErrValidation):
					writeError(w, http.StatusForbidden, codeForbidden, "profile does not allow access")
				case errors.Is(err, domain.ErrUnauthorized):
					writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
				default:
					writeError(w, http.StatusServiceUnavailable, codeUnavailable, "identity check unavailable, retry later")
				}
				return
			}
			noteActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctxutil.WithActor(r.Context(), actor)))
		})
	}
}

// RequireActor rejects anonymous requests with 401.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.ActorFromCtx(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
