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

// SetAccepting toggles whether the bazaar is offered to donors. Existing
// donations targeting it are unaffected.
func (s *Service) SetAccepting(ctx context.Context, actor domain.Actor, id string, accepting bool) (domain.Bazaar, error) {
	id = strings.TrimSpace(id)
	if err := domain.AuthorizeBazaarUpdate(actor, id); err != nil {
		return domain.Bazaar{}, err
	}
	if id == "" {
		return domain.Bazaar{}, domain.NewValidationError("bazaar_id", "required")
	}

	err := s.store.Update(ctx, record.Bazaars, id, record.AcceptingPatch(accepting), docstore.UpdateOptions{MergeOnly: true})
	if err != nil {
		return domain.Bazaar{}, fmt.Errorf("update bazaar %s: %w", id, err)
	}
	s.invalidate(ctx)

	s.log.InfoContext(ctx, "bazaar accepting changed",
		slog.String("bazaar_id", id),
		slog.Bool("accepting", accepting),
		slog.String("actor_id", actor.ID),
	)
	return s.Get(ctx, id)
}

// ImportInput validates a seed batch.
type ImportInput struct {
	Bazaars []domain.Bazaar
}

// Validate checks all entries and collects all errors.
func (i ImportInput) Validate() error {
	if len(i.Bazaars) == 0 {
		return domain.NewValidationError("bazaars", "required")
	}
	var errs []domain.FieldError
	seen := make(map[string]bool, len(i.Bazaars))
	for n, b := range i.Bazaars {
		prefix := fmt.Sprintf("bazaars[%d].", n)
		id := strings.TrimSpace(b.ID)
		if id == "" {
			errs = append(errs, domain.FieldError{Field: prefix + "id", Message: "required"})
		} else if seen[id] {
			errs = append(errs, domain.FieldError{Field: prefix + "id", Message: "duplicate"})
		}
		seen[id] = true
		if strings.TrimSpace(b.Name) == "" {
			errs = append(errs, domain.FieldError{Field: prefix + "name", Message: "required"})
		}
		if b.Location.Lat < -90 || b.Location.Lat > 90 || b.Location.Lng < -180 || b.Location.Lng > 180 {
			errs = append(errs, domain.FieldError{Field: prefix + "location", Message: "out of range"})
		}
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Import upserts a batch of bazaars by id in one transaction where the store
// supports it.
func (s *Service) Import(ctx context.Context, input ImportInput) (int, error) {
	if err := input.Validate(); err != nil {
		return 0, err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, b := range input.Bazaars {
			b.ID = strings.TrimSpace(b.ID)
			b.Name = strings.TrimSpace(b.Name)
			if err := s.store.Put(ctx, record.Bazaars, b.ID, record.BazaarToRecord(b)); err != nil {
				return fmt.Errorf("put bazaar %s: %w", b.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)

	s.log.InfoContext(ctx, "bazaars imported", slog.Int("count", len(input.Bazaars)))
	return len(input.Bazaars), nil
}
