package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// MatchesQuery reports whether any field contains q, ignoring case. A blank
// query matches everything.
func MatchesQuery(q string, fields ...string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return true
	}
	// A Caser is stateful and must not be shared between goroutines.
	fold := cases.Fold()
	needle := fold.String(q)
	for _, f := range fields {
		if strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

// FilterDonations keeps the donations whose title or description match q.
func FilterDonations(items []Donation, q string) []Donation {
	if strings.TrimSpace(q) == "" {
		return items
	}
	out := make([]Donation, 0, len(items))
	for _, d := range items {
		if MatchesQuery(q, d.Title, d.Description) {
			out = append(out, d)
		}
	}
	return out
}

// FilterBazaars keeps the bazaars whose name or address match q.
func FilterBazaars(items []Bazaar, q string) []Bazaar {
	if strings.TrimSpace(q) == "" {
		return items
	}
	out := make([]Bazaar, 0, len(items))
	for _, b := range items {
		if MatchesQuery(q, b.Name, b.Address) {
			out = append(out, b)
		}
	}
	return out
}
