package donation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// Approve moves a pending donation to approved. The QR payload is generated
// before the write and stored with it; if generation fails nothing is written.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, input ApproveInput) (domain.Donation, error) {
	d, err := s.approve(ctx, actor, input)
	s.observe("approve", err)
	return d, err
}

func (s *Service) approve(ctx context.Context, actor domain.Actor, input ApproveInput) (domain.Donation, error) {
	if err := domain.AuthorizeReview(actor); err != nil {
		return domain.Donation{}, err
	}
	if err := input.Validate(); err != nil {
		return domain.Donation{}, err
	}

	d, err := s.load(ctx, strings.TrimSpace(input.DonationID))
	if err != nil {
		return domain.Donation{}, err
	}

	params := domain.ApprovalParams{
		ReviewerID: actor.ID,
		At:         s.now(),
		Comment:    input.Comment,
	}
	if input.BazaarID != nil && strings.TrimSpace(*input.BazaarID) != "" {
		b, err := s.bazaars.Accepting(ctx, strings.TrimSpace(*input.BazaarID))
		if err != nil {
			return domain.Donation{}, fmt.Errorf("approve donation %s: %w", d.ID, err)
		}
		params.BazaarID = &b.ID
	}
	if d.Status == domain.DonationStatusPending {
		payload, err := s.qr.Generate(d.ID)
		if err != nil {
			return domain.Donation{}, fmt.Errorf("approve donation %s: %w", d.ID, err)
		}
		params.QRPayload = payload
	}

	change, err := domain.PlanApproval(d, params)
	if err != nil {
		return domain.Donation{}, err
	}
	updated, err := s.commit(ctx, d, change)
	if err != nil {
		return domain.Donation{}, err
	}

	s.log.InfoContext(ctx, "donation approved",
		slog.String("donation_id", d.ID),
		slog.String("reviewer_id", actor.ID),
	)
	return updated, nil
}

// Reject moves a pending donation to rejected. No QR payload is issued.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, input RejectInput) (domain.Donation, error) {
	d, err := s.reject(ctx, actor, input)
	s.observe("reject", err)
	return d, err
}

func (s *Service) reject(ctx context.Context, actor domain.Actor, input RejectInput) (domain.Donation, error) {
	if err := domain.AuthorizeReview(actor); err != nil {
		return domain.Donation{}, err
	}
	if err := input.Validate(); err != nil {
		return domain.Donation{}, err
	}

	d, err := s.load(ctx, strings.TrimSpace(input.DonationID))
	if err != nil {
		return domain.Donation{}, err
	}
	change, err := domain.PlanRejection(d, domain.RejectionParams{
		ReviewerID: actor.ID,
		At:         s.now(),
		Comment:    input.Comment,
	})
	if err != nil {
		return domain.Donation{}, err
	}
	updated, err := s.commit(ctx, d, change)
	if err != nil {
		return domain.Donation{}, err
	}

	s.log.InfoContext(ctx, "donation rejected",
		slog.String("donation_id", d.ID),
		slog.String("reviewer_id", actor.ID),
	)
	return updated, nil
}

// AssignBazaar sets the delivery location of a donation that is pending or
// approved and not yet delivered.
func (s *Service) AssignBazaar(ctx context.Context, actor domain.Actor, input AssignBazaarInput) (domain.Donation, error) {
	d, err := s.assignBazaar(ctx, actor, input)
	s.observe("assign_bazaar", err)
	return d, err
}

func (s *Service) assignBazaar(ctx context.Context, actor domain.Actor, input AssignBazaarInput) (domain.Donation, error) {
	if err := domain.AuthorizeReview(actor); err != nil {
		return domain.Donation{}, err
	}
	if err := input.Validate(); err != nil {
		return domain.Donation{}, err
	}

	d, err := s.load(ctx, strings.TrimSpace(input.DonationID))
	if err != nil {
		return domain.Donation{}, err
	}
	b, err := s.bazaars.Accepting(ctx, strings.TrimSpace(input.BazaarID))
	if err != nil {
		return domain.Donation{}, fmt.Errorf("assign donation %s: %w", d.ID, err)
	}
	change, err := domain.PlanBazaarAssignment(d, b.ID)
	if err != nil {
		return domain.Donation{}, err
	}
	updated, err := s.commit(ctx, d, change)
	if err != nil {
		return domain.Donation{}, err
	}

	s.log.InfoContext(ctx, "donation assigned",
		slog.String("donation_id", d.ID),
		slog.String("bazaar_id", b.ID),
		slog.String("reviewer_id", actor.ID),
	)
	return updated, nil
}
