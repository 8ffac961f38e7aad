package domain

import (
	"fmt"
	"strings"
)

// Authorization checks run before any gateway write. They return
// ErrUnauthorized for a missing actor and a wrapped ErrForbidden otherwise.

func requireActor(a Actor) error {
	if a.IsZero() {
		return ErrUnauthorized
	}
	return nil
}

func forbidden(a Actor, action string) error {
	return fmt.Errorf("%s %s cannot %s: %w", a.Role, a.ID, action, ErrForbidden)
}

// AuthorizeCreate allows donors to create donations.
func AuthorizeCreate(a Actor) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if a.Role != RoleDonor {
		return forbidden(a, "create donations")
	}
	return nil
}

// AuthorizeReview allows admins to approve, reject and retarget donations.
func AuthorizeReview(a Actor) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if a.Role != RoleAdmin {
		return forbidden(a, "review donations")
	}
	return nil
}

// AuthorizeDeliver allows the bazaar admin of the donation's bazaar to mark it
// delivered.
func AuthorizeDeliver(a Actor, d Donation) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if !a.ScopedTo(d.BazaarID) {
		return forbidden(a, "deliver donation "+d.ID)
	}
	return nil
}

// AuthorizePendingQueue allows admins to read the pending queue.
func AuthorizePendingQueue(a Actor) error {
	return AuthorizeReview(a)
}

// AuthorizeBazaarQueue allows bazaar admins with an assigned bazaar to read
// their queue.
func AuthorizeBazaarQueue(a Actor) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if a.Role != RoleBazaarAdmin || a.BazaarID == nil {
		return forbidden(a, "read a bazaar queue")
	}
	return nil
}

// AuthorizeView allows the donor, any admin, or the assigned bazaar's admin to
// read a donation and its QR payload.
func AuthorizeView(a Actor, d Donation) error {
	if err := requireActor(a); err != nil {
		return err
	}
	switch {
	case a.Role == RoleAdmin:
		return nil
	case a.ID == d.DonorID:
		return nil
	case a.ScopedTo(d.BazaarID):
		return nil
	}
	return forbidden(a, "view donation "+d.ID)
}

// AuthorizeBazaarUpdate allows admins and the bazaar's own admin to change
// its accepting flag.
func AuthorizeBazaarUpdate(a Actor, bazaarID string) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if a.Role == RoleAdmin || a.ScopedTo(&bazaarID) {
		return nil
	}
	return forbidden(a, "update bazaar "+bazaarID)
}

// AuthorizeHistory allows any identified actor to read their own donations.
func AuthorizeHistory(a Actor) error {
	return requireActor(a)
}

// AuthorizePhotoFolder allows admins to list any upload folder and everyone
// else only their own.
func AuthorizePhotoFolder(a Actor, folder string) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if hasDotSegment(folder) {
		return forbidden(a, "list photos in "+folder)
	}
	if a.Role == RoleAdmin || strings.HasPrefix(folder, PhotoFolderPrefix(a.ID)) {
		return nil
	}
	return forbidden(a, "list photos in "+folder)
}

func hasDotSegment(folder string) bool {
	for seg := range strings.SplitSeq(folder, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// PhotoFolderPrefix is the storage prefix under which a donor's uploads live.
func PhotoFolderPrefix(userID string) string {
	return "donations/" + userID + "/"
}
