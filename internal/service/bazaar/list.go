package bazaar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/record"
)

// List returns every bazaar ordered by name, served from cache when fresh.
func (s *Service) List(ctx context.Context) ([]domain.Bazaar, error) {
	items, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "read bazaar cache", slog.String("error", err.Error()))
	}
	if ok {
		s.metrics.CacheHit()
		return items, nil
	}
	s.metrics.CacheMiss()

	items, err = s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, items); err != nil {
		s.log.WarnContext(ctx, "fill bazaar cache", slog.String("error", err.Error()))
	}
	return items, nil
}

// ListAccepting returns the bazaars a donor may choose as a target.
func (s *Service) ListAccepting(ctx context.Context) ([]domain.Bazaar, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return acceptingOnly(items), nil
}

// Search filters the bazaar list by name or address.
func (s *Service) Search(ctx context.Context, query string, accepting bool) ([]domain.Bazaar, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if accepting {
		items = acceptingOnly(items)
	}
	return domain.FilterBazaars(items, query), nil
}

// Get returns one bazaar.
func (s *Service) Get(ctx context.Context, id string) (domain.Bazaar, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Bazaar{}, domain.NewValidationError("bazaar_id", "required")
	}
	rec, err := s.store.Get(ctx, record.Bazaars, id)
	if err != nil {
		return domain.Bazaar{}, fmt.Errorf("get bazaar %s: %w", id, err)
	}
	return record.BazaarFromRecord(rec)
}

// Accepting returns the bazaar if it currently accepts donations.
func (s *Service) Accepting(ctx context.Context, id string) (domain.Bazaar, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return domain.Bazaar{}, err
	}
	if !b.AcceptingDonations {
		return domain.Bazaar{}, domain.NewValidationError("bazaar_id", "bazaar is not accepting donations")
	}
	return b, nil
}

func (s *Service) loadAll(ctx context.Context) ([]domain.Bazaar, error) {
	q := docstore.Query{
		Collection: record.Bazaars,
		OrderBy:    docstore.OrderBy{Field: record.FieldName},
		Limit:      listPageSize,
	}
	var items []domain.Bazaar
	for {
		res, err := s.store.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("list bazaars: %w", err)
		}
		for _, r := range res.Records {
			b, err := record.BazaarFromRecord(r)
			if err != nil {
				s.log.WarnContext(ctx, "skip malformed bazaar", slog.String("error", err.Error()))
				continue
			}
			items = append(items, b)
		}
		if res.Next == nil {
			return items, nil
		}
		q.After = res.Next
	}
}

func acceptingOnly(items []domain.Bazaar) []domain.Bazaar {
	out := make([]domain.Bazaar, 0, len(items))
	for _, b := range items {
		if b.AcceptingDonations {
			out = append(out, b)
		}
	}
	return out
}
