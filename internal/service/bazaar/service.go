package bazaar

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/metrics"
)

// listPageSize bounds one gateway query while loading the full list.
const listPageSize = 200

type docStore interface {
	Get(ctx context.Context, collection, id string) (docstore.Record, error)
	Put(ctx context.Context, collection, id string, fields docstore.Record) error
	Update(ctx context.Context, collection, id string, fields docstore.Record, opts docstore.UpdateOptions) error
	Query(ctx context.Context, q docstore.Query) (docstore.Result, error)
}

type listCache interface {
	Get(ctx context.Context) ([]domain.Bazaar, bool, error)
	Set(ctx context.Context, items []domain.Bazaar) error
	Invalidate(ctx context.Context) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides bazaar reference data.
type Service struct {
	store   docStore
	cache   listCache
	tx      txManager
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewService creates a new Bazaar service. m may be nil.
func NewService(
	log *slog.Logger,
	store docStore,
	cache listCache,
	tx txManager,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		tx:      tx,
		metrics: m,
		log:     log.With("service", "bazaar"),
	}
}

// invalidate drops the cached list. Failures are logged; the entry still
// expires after its TTL.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "invalidate bazaar cache", slog.String("error", err.Error()))
	}
}
