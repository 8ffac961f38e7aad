package domain

import "strings"

// Identity is what the identity provider vouches for: a stable user id and
// the email it was issued to.
type Identity struct {
	UserID string
	Email  string
}

// Profile is the stored role record keyed by user id.
type Profile struct {
	UserID   string
	Email    string
	Role     Role
	BazaarID *string
}

// Actor is the resolved caller of a core operation. It is always passed as an
// explicit argument.
type Actor struct {
	ID       string
	Email    string
	Role     Role
	BazaarID *string
}

// DonorActor returns the default actor for an identity without a profile.
func DonorActor(id Identity) Actor {
	return Actor{ID: id.UserID, Email: id.Email, Role: RoleDonor}
}

// IsZero reports whether the actor carries no identity.
func (a Actor) IsZero() bool {
	return strings.TrimSpace(a.ID) == ""
}

// ScopedTo reports whether the actor is a bazaar admin of the given bazaar.
func (a Actor) ScopedTo(bazaarID *string) bool {
	if a.Role != RoleBazaarAdmin || a.BazaarID == nil || bazaarID == nil {
		return false
	}
	return *a.BazaarID == *bazaarID
}
