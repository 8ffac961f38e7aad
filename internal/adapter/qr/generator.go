// Package qr renders the payload scanned at delivery to identify a donation.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// Prefix is prepended to the donation id in the encoded content.
const Prefix = "donation:"

// Generator encodes donation ids as PNG QR codes.
type Generator struct {
	size int
}

// NewGenerator creates a Generator producing size x size pixel images.
func NewGenerator(size int) *Generator {
	return &Generator{size: size}
}

// Generate returns the PNG for the donation id. Failures wrap
// domain.ErrGeneration.
func (g *Generator) Generate(donationID string) ([]byte, error) {
	if strings.TrimSpace(donationID) == "" {
		return nil, fmt.Errorf("qr: empty donation id: %w", domain.ErrGeneration)
	}
	png, err := qrcode.Encode(Prefix+donationID, qrcode.Medium, g.size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode %s: %v: %w", donationID, err, domain.ErrGeneration)
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("qr: encode %s: empty image: %w", donationID, domain.ErrGeneration)
	}
	return png, nil
}
