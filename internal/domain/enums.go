package domain

import "fmt"

// DonationStatus is the primary lifecycle field of a Donation.
type DonationStatus string

const (
	DonationStatusPending  DonationStatus = "pending"
	DonationStatusApproved DonationStatus = "approved"
	DonationStatusRejected DonationStatus = "rejected"
)

func (s DonationStatus) String() string { return string(s) }

func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationStatusPending, DonationStatusApproved, DonationStatusRejected:
		return true
	}
	return false
}

// ParseDonationStatus is the only place a stored status string becomes a
// DonationStatus.
func ParseDonationStatus(s string) (DonationStatus, error) {
	st := DonationStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("donation status %q: %w", s, ErrValidation)
	}
	return st, nil
}

// DisplayStatus is the status shown to users: delivered is layered over approved.
type DisplayStatus string

const (
	DisplayStatusPending   DisplayStatus = "pending"
	DisplayStatusApproved  DisplayStatus = "approved"
	DisplayStatusRejected  DisplayStatus = "rejected"
	DisplayStatusDelivered DisplayStatus = "delivered"
)

func (s DisplayStatus) String() string { return string(s) }

// Role represents the authorization level of an actor.
type Role string

const (
	RoleDonor       Role = "donor"
	RoleAdmin       Role = "admin"
	RoleBazaarAdmin Role = "bazaar-admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleDonor, RoleAdmin, RoleBazaarAdmin:
		return true
	}
	return false
}

// ParseRole converts a stored role string. Legacy profiles used "bazaarAdmin".
func ParseRole(s string) (Role, error) {
	if s == "bazaarAdmin" {
		return RoleBazaarAdmin, nil
	}
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("role %q: %w", s, ErrValidation)
	}
	return r, nil
}
