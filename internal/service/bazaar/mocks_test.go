package bazaar

import (
	"context"
	"sync"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

var (
	_ listCache = &listCacheMock{}
	_ txManager = &txManagerMock{}
)

type listCacheMock struct {
	GetFunc        func(ctx context.Context) ([]domain.Bazaar, bool, error)
	SetFunc        func(ctx context.Context, items []domain.Bazaar) error
	InvalidateFunc func(ctx context.Context) error

	calls struct {
		Get        []struct{}
		Set        []struct{ Items []domain.Bazaar }
		Invalidate []struct{}
	}
	lockGet        sync.RWMutex
	lockSet        sync.RWMutex
	lockInvalidate sync.RWMutex
}

func (mock *listCacheMock) Get(ctx context.Context) ([]domain.Bazaar, bool, error) {
	if mock.GetFunc == nil {
		panic("listCacheMock.GetFunc: method is nil but listCache.Get was just called")
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, struct{}{})
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx)
}

func (mock *listCacheMock) GetCalls() []struct{} {
	mock.lockGet.RLock()
	defer mock.lockGet.RUnlock()
	return mock.calls.Get
}

func (mock *listCacheMock) Set(ctx context.Context, items []domain.Bazaar) error {
	if mock.SetFunc == nil {
		panic("listCacheMock.SetFunc: method is nil but listCache.Set was just called")
	}
	mock.lockSet.Lock()
	mock.calls.Set = append(mock.calls.Set, struct{ Items []domain.Bazaar }{items})
	mock.lockSet.Unlock()
	return mock.SetFunc(ctx, items)
}

func (mock *listCacheMock) SetCalls() []struct{ Items []domain.Bazaar } {
	mock.lockSet.RLock()
	defer mock.lockSet.RUnlock()
	return mock.calls.Set
}

func (mock *listCacheMock) Invalidate(ctx context.Context) error {
	if mock.InvalidateFunc == nil {
		panic("listCacheMock.InvalidateFunc: method is nil but listCache.Invalidate was just called")
	}
	mock.lockInvalidate.Lock()
	mock.calls.Invalidate = append(mock.calls.Invalidate, struct{}{})
	mock.lockInvalidate.Unlock()
	return mock.InvalidateFunc(ctx)
}

func (mock *listCacheMock) InvalidateCalls() []struct{} {
	mock.lockInvalidate.RLock()
	defer mock.lockInvalidate.RUnlock()
	return mock.calls.Invalidate
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct{}
	}
	lockRunInTx sync.RWMutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	mock.lockRunInTx.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, struct{}{})
	mock.lockRunInTx.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() []struct{} {
	mock.lockRunInTx.RLock()
	defer mock.lockRunInTx.RUnlock()
	return mock.calls.RunInTx
}
