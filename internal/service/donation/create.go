package donation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/record"
)

// Create stores a new pending donation for the donor. Input is validated
// before any gateway call.
func (s *Service) Create(ctx context.Context, actor domain.Actor, input CreateInput) (domain.Donation, error) {
	d, err := s.create(ctx, actor, input)
	s.observe("create", err)
	return d, err
}

func (s *Service) create(ctx context.Context, actor domain.Actor, input CreateInput) (domain.Donation, error) {
	if err := domain.AuthorizeCreate(actor); err != nil {
		return domain.Donation{}, err
	}
	if err := input.Validate(s.cfg.MinPhotos); err != nil {
		return domain.Donation{}, err
	}

	d := domain.Donation{
		DonorID:        actor.ID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		PhotoURLs:      distinct(input.PhotoURLs),
		Categories:     distinct(input.Categories),
		Status:         domain.DonationStatusPending,
		NeedsTransport: input.NeedsTransport,
	}

	if input.PreferredBazaarID != nil && strings.TrimSpace(*input.PreferredBazaarID) != "" {
		b, err := s.bazaars.Accepting(ctx, strings.TrimSpace(*input.PreferredBazaarID))
		if err != nil {
			return domain.Donation{}, fmt.Errorf("preferred bazaar: %w", err)
		}
		d.BazaarID = &b.ID
	}

	id, err := s.store.Create(ctx, record.Donations, record.DonationToRecord(d))
	if err != nil {
		return domain.Donation{}, fmt.Errorf("create donation: %w", err)
	}

	s.log.InfoContext(ctx, "donation created",
		slog.String("donation_id", id),
		slog.String("donor_id", actor.ID),
		slog.Int("photos", len(d.PhotoURLs)),
	)

	// The store assigns the authoritative creation time.
	stored, err := s.load(ctx, id)
	if err != nil {
		s.log.WarnContext(ctx, "read back created donation", slog.String("donation_id", id), slog.String("error", err.Error()))
		d.ID = id
		d.CreatedAt = s.now().UTC()
		return d, nil
	}
	return stored, nil
}
