// Package record maps loosely-typed document store records to domain
// entities and back. It is the only package that knows stored field names.
package record

import (
	"fmt"
	"time"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// Collections.
const (
	Donations = "donations"
	Bazaars   = "bazaars"
	Profiles  = "profiles"
)

// Donation field names. Legacy names are only ever read.
const (
	FieldID             = "id"
	FieldCreatedAt      = "createdAt"
	FieldDonorID        = "donorId"
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldPhotoURLs      = "photoUrls"
	FieldPhotoURL       = "photoUrl"
	FieldCategories     = "categories"
	FieldBazaarID       = "bazaarId"
	FieldStatus         = "status"
	FieldAdminComment   = "adminComment"
	FieldNeedsTransport = "needsTransport"
	FieldDelivered      = "delivered"
	FieldDeliveredAt    = "deliveredAt"
	FieldQRPayload      = "qrPayload"
	FieldQRGeneratedAt  = "qrGeneratedAt"
	FieldReviewerID     = "reviewerId"
	FieldReviewedAt     = "reviewedAt"

	legacyPhotoURLsUpper = "photoURLs"
	legacyImageURLs      = "imageUrls"
	legacyImageURL       = "imageUrl"
	legacyCategory       = "category"
	legacyTargetBazaar   = "targetBazaarId"
	legacyComment        = "comment"
	legacyTimestamp      = "timestamp"
	legacyUserID         = "userId"
)

// DonationFromRecord builds a Donation from a stored record. An absent
// status reads as pending; an unknown one is an error.
func DonationFromRecord(r docstore.Record) (domain.Donation, error) {
	id := stringField(r, FieldID)
	if id == "" {
		return domain.Donation{}, fmt.Errorf("donation record without id: %w", domain.ErrValidation)
	}

	status := domain.DonationStatusPending
	if raw := stringField(r, FieldStatus); raw != "" {
		parsed, err := domain.ParseDonationStatus(raw)
		if err != nil {
			return domain.Donation{}, fmt.Errorf("donation %s: %w", id, err)
		}
		status = parsed
	}

	createdAt, _ := timeField(r, FieldCreatedAt, legacyTimestamp)

	d := domain.Donation{
		ID:             id,
		DonorID:        stringField(r, FieldDonorID, legacyUserID),
		Title:          stringField(r, FieldTitle),
		Description:    stringField(r, FieldDescription),
		PhotoURLs:      photosFromRecord(r),
		Categories:     categoriesFromRecord(r),
		BazaarID:       optionalString(r, FieldBazaarID, legacyTargetBazaar),
		CreatedAt:      createdAt,
		Status:         status,
		AdminComment:   optionalString(r, FieldAdminComment, legacyComment),
		NeedsTransport: optionalBool(r, FieldNeedsTransport),
		Delivered:      optionalBool(r, FieldDelivered),
		DeliveredAt:    optionalTime(r, FieldDeliveredAt),
		QRGeneratedAt:  optionalTime(r, FieldQRGeneratedAt),
		ReviewerID:     optionalString(r, FieldReviewerID),
		ReviewedAt:     optionalTime(r, FieldReviewedAt),
	}
	if v, ok := first(r, FieldQRPayload); ok {
		d.QRPayload = bytesValue(v)
	}
	return d, nil
}

// photosFromRecord merges the array and single-photo forms into one ordered
// list without duplicates: array entries first, then the single field.
func photosFromRecord(r docstore.Record) []string {
	var merged []string
	for _, k := range []string{FieldPhotoURLs, legacyPhotoURLsUpper, legacyImageURLs} {
		if v, ok := r[k]; ok {
			merged = append(merged, stringList(v)...)
		}
	}
	for _, k := range []string{FieldPhotoURL, legacyImageURL} {
		if v, ok := r[k]; ok {
			merged = append(merged, stringList(v)...)
		}
	}
	return dedupe(merged)
}

func categoriesFromRecord(r docstore.Record) []string {
	v, ok := first(r, FieldCategories, legacyCategory)
	if !ok {
		return nil
	}
	return dedupe(stringList(v))
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// DonationToRecord returns the user fields of a new donation. System fields
// (id, createdAt) are assigned by the store.
func DonationToRecord(d domain.Donation) docstore.Record {
	r := docstore.Record{
		FieldDonorID:     d.DonorID,
		FieldTitle:       d.Title,
		FieldDescription: d.Description,
		FieldCategories:  nonNil(d.Categories),
		FieldStatus:      d.Status.String(),
	}
	writePhotos(r, d.PhotoURLs)
	if d.BazaarID != nil {
		r[FieldBazaarID] = *d.BazaarID
	}
	if d.AdminComment != nil {
		r[FieldAdminComment] = *d.AdminComment
	}
	if d.NeedsTransport != nil {
		r[FieldNeedsTransport] = *d.NeedsTransport
	}
	if d.Delivered != nil {
		r[FieldDelivered] = *d.Delivered
	}
	putTime(r, FieldDeliveredAt, d.DeliveredAt)
	if len(d.QRPayload) > 0 {
		r[FieldQRPayload] = d.QRPayload
	}
	putTime(r, FieldQRGeneratedAt, d.QRGeneratedAt)
	if d.ReviewerID != nil {
		r[FieldReviewerID] = *d.ReviewerID
	}
	putTime(r, FieldReviewedAt, d.ReviewedAt)
	return r
}

// writePhotos emits the single-photo form for exactly one photo and the array
// form otherwise.
func writePhotos(r docstore.Record, photos []string) {
	if len(photos) == 1 {
		r[FieldPhotoURL] = photos[0]
		return
	}
	r[FieldPhotoURLs] = nonNil(photos)
}

// DonationChangeToRecord returns the merge patch for a transition.
func DonationChangeToRecord(c domain.DonationChange) docstore.Record {
	r := docstore.Record{}
	if c.Status != nil {
		r[FieldStatus] = c.Status.String()
	}
	if c.BazaarID != nil {
		r[FieldBazaarID] = *c.BazaarID
	}
	if c.AdminComment != nil {
		r[FieldAdminComment] = *c.AdminComment
	}
	if c.ReviewerID != nil {
		r[FieldReviewerID] = *c.ReviewerID
	}
	putTime(r, FieldReviewedAt, c.ReviewedAt)
	if len(c.QRPayload) > 0 {
		r[FieldQRPayload] = c.QRPayload
	}
	putTime(r, FieldQRGeneratedAt, c.QRGeneratedAt)
	if c.Delivered != nil {
		r[FieldDelivered] = *c.Delivered
	}
	putTime(r, FieldDeliveredAt, c.DeliveredAt)
	return r
}

// Precondition is the write guard for a planned change. Records without a
// status read as pending and records without a delivered flag read as not
// delivered, so those expectations also accept the field being absent.
func Precondition(c domain.DonationChange) map[string]any {
	var status any = c.ExpectedStatus.String()
	if c.ExpectedStatus == domain.DonationStatusPending {
		status = docstore.OrAbsent{Value: status}
	}
	pre := map[string]any{FieldStatus: status}
	if c.ExpectUndelivered {
		pre[FieldDelivered] = docstore.OrAbsent{Value: false}
	}
	return pre
}

// PendingFilter selects pending donations, including records stored before
// the status field existed.
func PendingFilter() docstore.Filter {
	return docstore.Filter{Field: FieldStatus, Value: docstore.OrAbsent{Value: domain.DonationStatusPending.String()}}
}

func putTime(r docstore.Record, key string, t *time.Time) {
	if t != nil {
		r[key] = t.UTC()
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
