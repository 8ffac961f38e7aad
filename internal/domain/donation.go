package domain

import (
	"strings"
	"time"
)

// Donation is a donor's offered goods tracked from review to delivery.
type Donation struct {
	ID          string
	DonorID     string
	Title       string
	Description string
	PhotoURLs   []string
	Categories  []string
	BazaarID    *string
	CreatedAt   time.Time
	Status      DonationStatus

	AdminComment   *string
	NeedsTransport *bool

	Delivered   *bool
	DeliveredAt *time.Time

	QRPayload     []byte
	QRGeneratedAt *time.Time

	ReviewerID *string
	ReviewedAt *time.Time
}

// transportKeywords are matched case-insensitively against category tags.
var transportKeywords = []string{"appliance", "furniture"}

// IsDelivered reports whether the delivered flag is set.
func (d Donation) IsDelivered() bool {
	return d.Delivered != nil && *d.Delivered
}

// DisplayStatus returns delivered when the delivered flag is set, otherwise
// the raw status.
func (d Donation) DisplayStatus() DisplayStatus {
	if d.IsDelivered() {
		return DisplayStatusDelivered
	}
	return DisplayStatus(d.Status)
}

// HasQR reports whether a QR payload has been issued.
func (d Donation) HasQR() bool {
	return len(d.QRPayload) > 0
}

// TransportEligible reports whether any category is an appliance or furniture
// classification.
func (d Donation) TransportEligible() bool {
	for _, c := range d.Categories {
		lc := strings.ToLower(c)
		for _, kw := range transportKeywords {
			if strings.Contains(lc, kw) {
				return true
			}
		}
	}
	return false
}

// ShowsTransportAssistance reports whether the transport-assistance badge
// should be displayed.
func (d Donation) ShowsTransportAssistance() bool {
	return d.TransportEligible() && d.NeedsTransport != nil && *d.NeedsTransport
}

// SortKey returns the pagination key of the donation.
func (d Donation) SortKey() PageKey {
	return PageKey{CreatedAt: d.CreatedAt, ID: d.ID}
}
