package domain

import (
	"fmt"
	"strings"
	"time"
)

// DonationChange is the set of fields a single transition writes. Fields left
// nil are untouched; photos, title, categories and donor are never part of a
// change. ExpectedStatus is the status the stored record must still have when
// the change is written; with ExpectUndelivered it must also not be delivered.
type DonationChange struct {
	ExpectedStatus    DonationStatus
	ExpectUndelivered bool

	Status        *DonationStatus
	BazaarID      *string
	AdminComment  *string
	ReviewerID    *string
	ReviewedAt    *time.Time
	QRPayload     []byte
	QRGeneratedAt *time.Time
	Delivered     *bool
	DeliveredAt   *time.Time
}

// Apply returns d with the change applied.
func (c DonationChange) Apply(d Donation) Donation {
	if c.Status != nil {
		d.Status = *c.Status
	}
	if c.BazaarID != nil {
		d.BazaarID = c.BazaarID
	}
	if c.AdminComment != nil {
		d.AdminComment = c.AdminComment
	}
	if c.ReviewerID != nil {
		d.ReviewerID = c.ReviewerID
	}
	if c.ReviewedAt != nil {
		d.ReviewedAt = c.ReviewedAt
	}
	if len(c.QRPayload) > 0 {
		d.QRPayload = c.QRPayload
	}
	if c.QRGeneratedAt != nil {
		d.QRGeneratedAt = c.QRGeneratedAt
	}
	if c.Delivered != nil {
		d.Delivered = c.Delivered
	}
	if c.DeliveredAt != nil {
		d.DeliveredAt = c.DeliveredAt
	}
	return d
}

// ApprovalParams carries the reviewer's input and the pre-generated QR payload.
type ApprovalParams struct {
	ReviewerID string
	At         time.Time
	QRPayload  []byte
	BazaarID   *string
	Comment    *string
}

// PlanApproval validates pending -> approved and returns the change to write.
// The QR payload is part of the same change so the approval is never written
// without it.
func PlanApproval(d Donation, p ApprovalParams) (DonationChange, error) {
	if d.Status != DonationStatusPending {
		return DonationChange{}, &TransitionError{Action: "approve", From: d.DisplayStatus()}
	}
	if strings.TrimSpace(p.ReviewerID) == "" {
		return DonationChange{}, NewValidationError("reviewer_id", "required")
	}
	if len(p.QRPayload) == 0 {
		return DonationChange{}, fmt.Errorf("approve donation %s: empty payload: %w", d.ID, ErrGeneration)
	}

	at := p.At.UTC()
	status := DonationStatusApproved
	reviewer := p.ReviewerID
	c := DonationChange{
		ExpectedStatus: DonationStatusPending,
		Status:         &status,
		ReviewerID:     &reviewer,
		ReviewedAt:     &at,
		QRPayload:      p.QRPayload,
		QRGeneratedAt:  &at,
		AdminComment:   trimmedOrNil(p.Comment),
	}
	if p.BazaarID != nil && strings.TrimSpace(*p.BazaarID) != "" {
		id := strings.TrimSpace(*p.BazaarID)
		c.BazaarID = &id
	}
	return c, nil
}

// RejectionParams carries the reviewer's input for a rejection.
type RejectionParams struct {
	ReviewerID string
	At         time.Time
	Comment    *string
}

// PlanRejection validates pending -> rejected. No QR payload is issued.
func PlanRejection(d Donation, p RejectionParams) (DonationChange, error) {
	if d.Status != DonationStatusPending {
		return DonationChange{}, &TransitionError{Action: "reject", From: d.DisplayStatus()}
	}
	if strings.TrimSpace(p.ReviewerID) == "" {
		return DonationChange{}, NewValidationError("reviewer_id", "required")
	}

	at := p.At.UTC()
	status := DonationStatusRejected
	reviewer := p.ReviewerID
	return DonationChange{
		ExpectedStatus: DonationStatusPending,
		Status:         &status,
		ReviewerID:     &reviewer,
		ReviewedAt:     &at,
		AdminComment:   trimmedOrNil(p.Comment),
	}, nil
}

// PlanDelivery validates approved -> delivered. Delivering an already
// delivered donation is a no-op: noop is true and the change is empty.
func PlanDelivery(d Donation, at time.Time) (change DonationChange, noop bool, err error) {
	if d.Status != DonationStatusApproved {
		return DonationChange{}, false, &TransitionError{Action: "deliver", From: d.DisplayStatus()}
	}
	if d.IsDelivered() {
		return DonationChange{}, true, nil
	}
	if d.BazaarID == nil {
		return DonationChange{}, false, NewValidationError("bazaar_id", "no bazaar assigned")
	}

	delivered := true
	at = at.UTC()
	return DonationChange{
		ExpectedStatus:    DonationStatusApproved,
		ExpectUndelivered: true,
		Delivered:         &delivered,
		DeliveredAt:       &at,
	}, false, nil
}

// PlanBazaarAssignment retargets a donation that is still awaiting review or
// delivery. The assignment becomes the authoritative delivery location.
func PlanBazaarAssignment(d Donation, bazaarID string) (DonationChange, error) {
	if d.Status == DonationStatusRejected || d.IsDelivered() {
		return DonationChange{}, &TransitionError{Action: "reassign", From: d.DisplayStatus()}
	}
	bazaarID = strings.TrimSpace(bazaarID)
	if bazaarID == "" {
		return DonationChange{}, NewValidationError("bazaar_id", "required")
	}
	return DonationChange{
		ExpectedStatus:    d.Status,
		ExpectUndelivered: true,
		BazaarID:          &bazaarID,
	}, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
