package record

import (
	"fmt"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// Profile field names. Profiles are keyed by the identity's user id.
const (
	FieldEmail = "email"
	FieldRole  = "role"
)

// ProfileFromRecord builds a Profile. A missing role reads as donor.
func ProfileFromRecord(r docstore.Record) (domain.Profile, error) {
	p := domain.Profile{
		UserID:   stringField(r, FieldID),
		Email:    stringField(r, FieldEmail),
		Role:     domain.RoleDonor,
		BazaarID: optionalString(r, FieldBazaarID, legacyTargetBazaar),
	}
	if raw := stringField(r, FieldRole); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return domain.Profile{}, fmt.Errorf("profile %s: %w", p.UserID, err)
		}
		p.Role = role
	}
	return p, nil
}

// ProfileToRecord returns the stored fields of a profile.
func ProfileToRecord(p domain.Profile) docstore.Record {
	r := docstore.Record{
		FieldEmail: p.Email,
		FieldRole:  p.Role.String(),
	}
	if p.BazaarID != nil {
		r[FieldBazaarID] = *p.BazaarID
	}
	return r
}
