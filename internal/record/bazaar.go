package record

import (
	"fmt"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// Bazaar field names.
const (
	FieldName               = "name"
	FieldAddress            = "address"
	FieldLocation           = "location"
	FieldHours              = "hours"
	FieldPhone              = "phone"
	FieldBazaarCategories   = "categories"
	FieldAcceptingDonations = "acceptingDonations"

	legacyLatitude  = "latitude"
	legacyLongitude = "longitude"
	legacyAccepting = "isAccepting"
	legacyHours     = "openingHours"
)

// BazaarFromRecord builds a Bazaar from a stored record.
func BazaarFromRecord(r docstore.Record) (domain.Bazaar, error) {
	id := stringField(r, FieldID)
	if id == "" {
		return domain.Bazaar{}, fmt.Errorf("bazaar record without id: %w", domain.ErrValidation)
	}

	b := domain.Bazaar{
		ID:       id,
		Name:     stringField(r, FieldName),
		Address:  stringField(r, FieldAddress),
		Location: locationFromRecord(r),
		Hours:    hoursFromRecord(r),
		Phone:    stringField(r, FieldPhone),
	}
	if accepting := optionalBool(r, FieldAcceptingDonations, legacyAccepting); accepting != nil {
		b.AcceptingDonations = *accepting
	}
	if raw, ok := r[FieldBazaarCategories].(map[string]any); ok {
		b.Categories = make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := stringValue(v); ok {
				b.Categories[k] = s
			}
		}
	} else if raw, ok := r[FieldBazaarCategories].(map[string]string); ok {
		b.Categories = make(map[string]string, len(raw))
		for k, v := range raw {
			b.Categories[k] = v
		}
	}
	return b, nil
}

func locationFromRecord(r docstore.Record) domain.GeoPoint {
	var p domain.GeoPoint
	if loc, ok := r[FieldLocation].(map[string]any); ok {
		p.Lat, _ = numberValue(firstOf(loc, "lat", "latitude"))
		p.Lng, _ = numberValue(firstOf(loc, "lng", "longitude"))
		return p
	}
	p.Lat, _ = numberValue(r[legacyLatitude])
	p.Lng, _ = numberValue(r[legacyLongitude])
	return p
}

func firstOf(m map[string]any, keys ...string) any {
	v, _ := first(m, keys...)
	return v
}

// hoursFromRecord accepts a list of {days, hours} blocks or a single
// free-text string.
func hoursFromRecord(r docstore.Record) []domain.OpeningHours {
	v, ok := first(r, FieldHours, legacyHours)
	if !ok {
		return nil
	}
	switch h := v.(type) {
	case string:
		if h == "" {
			return nil
		}
		return []domain.OpeningHours{{Hours: h}}
	case []any:
		out := make([]domain.OpeningHours, 0, len(h))
		for _, item := range h {
			switch block := item.(type) {
			case map[string]any:
				days, _ := stringValue(block["days"])
				hours, _ := stringValue(block["hours"])
				out = append(out, domain.OpeningHours{Days: days, Hours: hours})
			case string:
				out = append(out, domain.OpeningHours{Hours: block})
			}
		}
		return out
	case []map[string]any:
		out := make([]domain.OpeningHours, 0, len(h))
		for _, block := range h {
			days, _ := stringValue(block["days"])
			hours, _ := stringValue(block["hours"])
			out = append(out, domain.OpeningHours{Days: days, Hours: hours})
		}
		return out
	}
	return nil
}

// BazaarToRecord returns the stored fields of a bazaar.
func BazaarToRecord(b domain.Bazaar) docstore.Record {
	hours := make([]any, 0, len(b.Hours))
	for _, h := range b.Hours {
		hours = append(hours, map[string]any{"days": h.Days, "hours": h.Hours})
	}
	categories := make(map[string]any, len(b.Categories))
	for k, v := range b.Categories {
		categories[k] = v
	}
	return docstore.Record{
		FieldName:               b.Name,
		FieldAddress:            b.Address,
		FieldLocation:           map[string]any{"lat": b.Location.Lat, "lng": b.Location.Lng},
		FieldHours:              hours,
		FieldPhone:              b.Phone,
		FieldBazaarCategories:   categories,
		FieldAcceptingDonations: b.AcceptingDonations,
	}
}

// AcceptingPatch is the merge patch toggling a bazaar's accepting flag.
func AcceptingPatch(accepting bool) docstore.Record {
	return docstore.Record{FieldAcceptingDonations: accepting}
}
