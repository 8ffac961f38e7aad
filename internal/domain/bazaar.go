package domain

// Bazaar is a physical distribution site that can accept donations.
type Bazaar struct {
	ID                 string
	Name               string
	Address            string
	Location           GeoPoint
	Hours              []OpeningHours
	Phone              string
	Categories         map[string]string
	AcceptingDonations bool
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// OpeningHours is one day-of-week block, e.g. {"Mon-Fri", "09:00-17:00"}.
type OpeningHours struct {
	Days  string
	Hours string
}
