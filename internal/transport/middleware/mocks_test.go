package middleware

import (
	"context"
	"sync"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

var (
	_ tokenValidator = &tokenValidatorMock{}
	_ actorResolver  = &actorResolverMock{}
)

type tokenValidatorMock struct {
	ValidateAccessTokenFunc func(token string) (domain.Identity, error)

	calls struct {
		ValidateAccessToken []struct {
			Token string
		}
	}
	lockValidateAccessToken sync.RWMutex
}

func (mock *tokenValidatorMock) ValidateAccessToken(token string) (domain.Identity, error) {
	if mock.ValidateAccessTokenFunc == nil {
		panic("tokenValidatorMock.ValidateAccessTokenFunc: method is nil but tokenValidator.ValidateAccessToken was just called")
	}
	mock.lockValidateAccessToken.Lock()
	mock.calls.ValidateAccessToken = append(mock.calls.ValidateAccessToken, struct{ Token string }{token})
	mock.lockValidateAccessToken.Unlock()
	return mock.ValidateAccessTokenFunc(token)
}

func (mock *tokenValidatorMock) ValidateAccessTokenCalls() []struct{ Token string } {
	mock.lockValidateAccessToken.RLock()
	defer mock.lockValidateAccessToken.RUnlock()
	return mock.calls.ValidateAccessToken
}

type actorResolverMock struct {
	ResolveFunc func(ctx context.Context, id domain.Identity) (domain.Actor, error)

	calls struct {
		Resolve []struct {
			ID domain.Identity
		}
	}
	lockResolve sync.RWMutex
}

func (mock *actorResolverMock) Resolve(ctx context.Context, id domain.Identity) (domain.Actor, error) {
	if mock.ResolveFunc == nil {
		panic("actorResolverMock.ResolveFunc: method is nil but actorResolver.Resolve was just called")
	}
	mock.lockResolve.Lock()
	mock.calls.Resolve = append(mock.calls.Resolve, struct{ ID domain.Identity }{id})
	mock.lockResolve.Unlock()
	return mock.ResolveFunc(ctx, id)
}

func (mock *actorResolverMock) ResolveCalls() []struct{ ID domain.Identity } {
	mock.lockResolve.RLock()
	defer mock.lockResolve.RUnlock()
	return mock.calls.Resolve
}
