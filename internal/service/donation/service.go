package donation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/metrics"
	"github.com/heartmarshall/bazaar-backend/internal/record"
)

const (
	DefaultPageSize  = 20
	DefaultMinPhotos = 2

	MaxTitleLength       = 120
	MaxDescriptionLength = 2000
	MaxComment           = 1000
)

type docStore interface {
	Create(ctx context.Context, collection string, fields docstore.Record) (string, error)
	Get(ctx context.Context, collection, id string) (docstore.Record, error)
	Update(ctx context.Context, collection, id string, fields docstore.Record, opts docstore.UpdateOptions) error
	Query(ctx context.Context, q docstore.Query) (docstore.Result, error)
}

type blobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	ListAndResolve(ctx context.Context, prefix string) ([]string, error)
}

type qrGenerator interface {
	Generate(donationID string) ([]byte, error)
}

type bazaarLookup interface {
	Accepting(ctx context.Context, id string) (domain.Bazaar, error)
}

// Config holds the tunables of the donation service.
type Config struct {
	PageSize     int
	MinPhotos    int
	UploadWorker int
}

// Service runs the donation lifecycle and its role-scoped views.
type Service struct {
	store   docStore
	blobs   blobStore
	qr      qrGenerator
	bazaars bazaarLookup
	metrics *metrics.Metrics
	cfg     Config
	now     func() time.Time
	newID   func() string
	log     *slog.Logger
}

// NewService creates a new Donation service. m may be nil.
func NewService(
	log *slog.Logger,
	store docStore,
	blobs blobStore,
	qr qrGenerator,
	bazaars bazaarLookup,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MinPhotos <= 0 {
		cfg.MinPhotos = DefaultMinPhotos
	}
	if cfg.UploadWorker <= 0 {
		cfg.UploadWorker = 4
	}
	return &Service{
		store:   store,
		blobs:   blobs,
		qr:      qr,
		bazaars: bazaars,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
		log:     log.With("service", "donation"),
	}
}

// load reads and maps one donation.
func (s *Service) load(ctx context.Context, id string) (domain.Donation, error) {
	rec, err := s.store.Get(ctx, record.Donations, id)
	if err != nil {
		return domain.Donation{}, fmt.Errorf("get donation %s: %w", id, err)
	}
	d, err := record.DonationFromRecord(rec)
	if err != nil {
		return domain.Donation{}, fmt.Errorf("map donation %s: %w", id, err)
	}
	return d, nil
}

// commit writes a planned change as one merge guarded by the expected status
// and returns the post-transition entity.
func (s *Service) commit(ctx context.Context, d domain.Donation, c domain.DonationChange) (domain.Donation, error) {
	err := s.store.Update(ctx, record.Donations, d.ID, record.DonationChangeToRecord(c), docstore.UpdateOptions{
		MergeOnly:    true,
		Precondition: record.Precondition(c),
	})
	if err != nil {
		return domain.Donation{}, fmt.Errorf("update donation %s: %w", d.ID, err)
	}
	return c.Apply(d), nil
}

// observe reports the command outcome to metrics.
func (s *Service) observe(action string, err error) {
	s.metrics.Transition(action, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		return "denied"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrGeneration):
		return "generation_failed"
	case errors.Is(err, domain.ErrTransient):
		return "transient"
	}
	return "error"
}
