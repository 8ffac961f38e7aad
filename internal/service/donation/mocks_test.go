package donation

import (
	"context"
	"sync"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

var (
	_ docStore     = &docStoreMock{}
	_ blobStore    = &blobStoreMock{}
	_ qrGenerator  = &qrGeneratorMock{}
	_ bazaarLookup = &bazaarLookupMock{}
)

// ---------------------------------------------------------------------------
// docStoreMock
// ---------------------------------------------------------------------------

type docStoreMock struct {
	CreateFunc func(ctx context.Context, collection string, fields docstore.Record) (string, error)
	GetFunc    func(ctx context.Context, collection, id string) (docstore.Record, error)
	UpdateFunc func(ctx context.Context, collection, id string, fields docstore.Record, opts docstore.UpdateOptions) error
	QueryFunc  func(ctx context.Context, q docstore.Query) (docstore.Result, error)

	calls struct {
		Create []struct {
			Collection string
			Fields     docstore.Record
		}
		Get []struct {
			Collection string
			ID         string
		}
		Update []struct {
			Collection string
			ID         string
			Fields     docstore.Record
			Opts       docstore.UpdateOptions
		}
		Query []struct {
			Q docstore.Query
		}
	}
	lockCreate sync.RWMutex
	lockGet    sync.RWMutex
	lockUpdate sync.RWMutex
	lockQuery  sync.RWMutex
}

func (mock *docStoreMock) Create(ctx context.Context, collection string, fields docstore.Record) (string, error) {
	if mock.CreateFunc == nil {
		panic("docStoreMock.CreateFunc: method is nil but docStore.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, struct {
		Collection string
		Fields     docstore.Record
	}{collection, fields})
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, collection, fields)
}

func (mock *docStoreMock) CreateCalls() []struct {
	Collection string
	Fields     docstore.Record
} {
	mock.lockCreate.RLock()
	defer mock.lockCreate.RUnlock()
	return mock.calls.Create
}

func (mock *docStoreMock) Get(ctx context.Context, collection, id string) (docstore.Record, error) {
	if mock.GetFunc == nil {
		panic("docStoreMock.GetFunc: method is nil but docStore.Get was just called")
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, struct {
		Collection string
		ID         string
	}{collection, id})
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, collection, id)
}

func (mock *docStoreMock) GetCalls() []struct {
	Collection string
	ID         string
} {
	mock.lockGet.RLock()
	defer mock.lockGet.RUnlock()
	return mock.calls.Get
}

func (mock *docStoreMock) Update(ctx context.Context, collection, id string, fields docstore.Record, opts docstore.UpdateOptions) error {
	if mock.UpdateFunc == nil {
		panic("docStoreMock.UpdateFunc: method is nil but docStore.Update was just called")
	}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, struct {
		Collection string
		ID         string
		Fields     docstore.Record
		Opts       docstore.UpdateOptions
	}{collection, id, fields, opts})
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, collection, id, fields, opts)
}

func (mock *docStoreMock) UpdateCalls() []struct {
	Collection string
	ID         string
	Fields     docstore.Record
	Opts       docstore.UpdateOptions
} {
	mock.lockUpdate.RLock()
	defer mock.lockUpdate.RUnlock()
	return mock.calls.Update
}

func (mock *docStoreMock) Query(ctx context.Context, q docstore.Query) (docstore.Result, error) {
	if mock.QueryFunc == nil {
		panic("docStoreMock.QueryFunc: method is nil but docStore.Query was just called")
	}
	mock.lockQuery.Lock()
	mock.calls.Query = append(mock.calls.Query, struct{ Q docstore.Query }{q})
	mock.lockQuery.Unlock()
	return mock.QueryFunc(ctx, q)
}

func (mock *docStoreMock) QueryCalls() []struct{ Q docstore.Query } {
	mock.lockQuery.RLock()
	defer mock.lockQuery.RUnlock()
	return mock.calls.Query
}

// ---------------------------------------------------------------------------
// blobStoreMock
// ---------------------------------------------------------------------------

type blobStoreMock struct {
	UploadFunc         func(ctx context.Context, key string, data []byte, contentType string) (string, error)
	ListAndResolveFunc func(ctx context.Context, prefix string) ([]string, error)

	calls struct {
		Upload []struct {
			Key         string
			Data        []byte
			ContentType string
		}
		ListAndResolve []struct {
			Prefix string
		}
	}
	lockUpload         sync.RWMutex
	lockListAndResolve sync.RWMutex
}

func (mock *blobStoreMock) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if mock.UploadFunc == nil {
		panic("blobStoreMock.UploadFunc: method is nil but blobStore.Upload was just called")
	}
	mock.lockUpload.Lock()
	mock.calls.Upload = append(mock.calls.Upload, struct {
		Key         string
		Data        []byte
		ContentType string
	}{key, data, contentType})
	mock.lockUpload.Unlock()
	return mock.UploadFunc(ctx, key, data, contentType)
}

func (mock *blobStoreMock) UploadCalls() []struct {
	Key         string
	Data        []byte
	ContentType string
} {
	mock.lockUpload.RLock()
	defer mock.lockUpload.RUnlock()
	return mock.calls.Upload
}

func (mock *blobStoreMock) ListAndResolve(ctx context.Context, prefix string) ([]string, error) {
	if mock.ListAndResolveFunc == nil {
		panic("blobStoreMock.ListAndResolveFunc: method is nil but blobStore.ListAndResolve was just called")
	}
	mock.lockListAndResolve.Lock()
	mock.calls.ListAndResolve = append(mock.calls.ListAndResolve, struct{ Prefix string }{prefix})
	mock.lockListAndResolve.Unlock()
	return mock.ListAndResolveFunc(ctx, prefix)
}

func (mock *blobStoreMock) ListAndResolveCalls() []struct{ Prefix string } {
	mock.lockListAndResolve.RLock()
	defer mock.lockListAndResolve.RUnlock()
	return mock.calls.ListAndResolve
}

// ---------------------------------------------------------------------------
// qrGeneratorMock
// ---------------------------------------------------------------------------

type qrGeneratorMock struct {
	GenerateFunc func(donationID string) ([]byte, error)

	calls struct {
		Generate []struct {
			DonationID string
		}
	}
	lockGenerate sync.RWMutex
}

func (mock *qrGeneratorMock) Generate(donationID string) ([]byte, error) {
	if mock.GenerateFunc == nil {
		panic("qrGeneratorMock.GenerateFunc: method is nil but qrGenerator.Generate was just called")
	}
	mock.lockGenerate.Lock()
	mock.calls.Generate = append(mock.calls.Generate, struct{ DonationID string }{donationID})
	mock.lockGenerate.Unlock()
	return mock.GenerateFunc(donationID)
}

func (mock *qrGeneratorMock) GenerateCalls() []struct{ DonationID string } {
	mock.lockGenerate.RLock()
	defer mock.lockGenerate.RUnlock()
	return mock.calls.Generate
}

// ---------------------------------------------------------------------------
// bazaarLookupMock
// ---------------------------------------------------------------------------

type bazaarLookupMock struct {
	AcceptingFunc func(ctx context.Context, id string) (domain.Bazaar, error)

	calls struct {
		Accepting []struct {
			ID string
		}
	}
	lockAccepting sync.RWMutex
}

func (mock *bazaarLookupMock) Accepting(ctx context.Context, id string) (domain.Bazaar, error) {
	if mock.AcceptingFunc == nil {
		panic("bazaarLookupMock.AcceptingFunc: method is nil but bazaarLookup.Accepting was just called")
	}
	mock.lockAccepting.Lock()
	mock.calls.Accepting = append(mock.calls.Accepting, struct{ ID string }{id})
	mock.lockAccepting.Unlock()
	return mock.AcceptingFunc(ctx, id)
}

func (mock *bazaarLookupMock) AcceptingCalls() []struct{ ID string } {
	mock.lockAccepting.RLock()
	defer mock.lockAccepting.RUnlock()
	return mock.calls.Accepting
}
