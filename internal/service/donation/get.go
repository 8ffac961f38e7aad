package donation

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// Get returns one donation visible to the actor.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (domain.Donation, error) {
	if actor.IsZero() {
		return domain.Donation{}, domain.ErrUnauthorized
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Donation{}, domain.NewValidationError("donation_id", "required")
	}

	d, err := s.load(ctx, id)
	if err != nil {
		return domain.Donation{}, err
	}
	if err := domain.AuthorizeView(actor, d); err != nil {
		return domain.Donation{}, err
	}
	return d, nil
}

// QRCode returns the stored QR payload of an approved donation.
func (s *Service) QRCode(ctx context.Context, actor domain.Actor, id string) ([]byte, error) {
	d, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !d.HasQR() {
		return nil, fmt.Errorf("qr code of donation %s: %w", d.ID, domain.ErrNotFound)
	}
	return d.QRPayload, nil
}
