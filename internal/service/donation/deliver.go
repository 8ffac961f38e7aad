package donation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// Deliver marks an approved donation as handed off at the actor's bazaar.
// Delivering an already delivered donation returns it unchanged.
func (s *Service) Deliver(ctx context.Context, actor domain.Actor, donationID string) (domain.Donation, error) {
	d, err := s.deliver(ctx, actor, donationID)
	s.observe("deliver", err)
	return d, err
}

func (s *Service) deliver(ctx context.Context, actor domain.Actor, donationID string) (domain.Donation, error) {
	if actor.IsZero() {
		return domain.Donation{}, domain.ErrUnauthorized
	}
	donationID = strings.TrimSpace(donationID)
	if donationID == "" {
		return domain.Donation{}, domain.NewValidationError("donation_id", "required")
	}

	d, err := s.load(ctx, donationID)
	if err != nil {
		return domain.Donation{}, err
	}
	if err := domain.AuthorizeDeliver(actor, d); err != nil {
		return domain.Donation{}, err
	}

	change, noop, err := domain.PlanDelivery(d, s.now())
	if err != nil {
		return domain.Donation{}, err
	}
	if noop {
		return d, nil
	}
	updated, err := s.commit(ctx, d, change)
	if errors.Is(err, domain.ErrConflict) {
		// A concurrent deliver won; its timestamp stands.
		current, loadErr := s.load(ctx, donationID)
		if loadErr == nil && current.IsDelivered() {
			return current, nil
		}
	}
	if err != nil {
		return domain.Donation{}, err
	}

	s.log.InfoContext(ctx, "donation delivered",
		slog.String("donation_id", d.ID),
		slog.String("bazaar_id", *d.BazaarID),
		slog.String("actor_id", actor.ID),
	)
	return updated, nil
}
