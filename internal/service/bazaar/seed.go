package bazaar

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

type seedBazaar struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Hours []struct {
		Days  string `json:"days"`
		Hours string `json:"hours"`
	} `json:"hours"`
	Phone              string            `json:"phone"`
	Categories         map[string]string `json:"categories"`
	AcceptingDonations *bool             `json:"acceptingDonations"`
}

// DecodeSeed reads a JSON array of bazaars. Bazaars accept donations unless
// the file says otherwise.
func DecodeSeed(r io.Reader) (ImportInput, error) {
	var raw []seedBazaar
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return ImportInput{}, fmt.Errorf("decode seed: %w", err)
	}

	out := ImportInput{Bazaars: make([]domain.Bazaar, 0, len(raw))}
	for _, s := range raw {
		b := domain.Bazaar{
			ID:                 s.ID,
			Name:               s.Name,
			Address:            s.Address,
			Location:           domain.GeoPoint{Lat: s.Location.Lat, Lng: s.Location.Lng},
			Phone:              s.Phone,
			Categories:         s.Categories,
			AcceptingDonations: s.AcceptingDonations == nil || *s.AcceptingDonations,
		}
		for _, h := range s.Hours {
			b.Hours = append(b.Hours, domain.OpeningHours{Days: h.Days, Hours: h.Hours})
		}
		out.Bazaars = append(out.Bazaars, b)
	}
	return out, nil
}
