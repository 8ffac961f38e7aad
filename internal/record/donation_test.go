package record

import (
	"encoding/base64"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

// stored simulates what a store hands back after Create: the written user
// fields plus the system fields.
func stored(fields docstore.Record, id string, createdAt time.Time) docstore.Record {
	out := docstore.Record{FieldID: id, FieldCreatedAt: createdAt}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// Photo normalization
// ---------------------------------------------------------------------------

func TestDonation_PhotoRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		photos    []string
		wantKey   string
		absentKey string
	}{
		{"single photo", []string{"a"}, FieldPhotoURL, FieldPhotoURLs},
		{"three photos", []string{"a", "b", "c"}, FieldPhotoURLs, FieldPhotoURL},
		{"no photos", nil, FieldPhotoURLs, FieldPhotoURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields := DonationToRecord(domain.Donation{
				DonorID:   "donor-1",
				Title:     "Winter Coats",
				PhotoURLs: tt.photos,
				Status:    domain.DonationStatusPending,
			})
			if _, ok := fields[tt.wantKey]; !ok {
				t.Errorf("expected %q to be written, got %v", tt.wantKey, fields)
			}
			if _, ok := fields[tt.absentKey]; ok {
				t.Errorf("expected %q to be absent, got %v", tt.absentKey, fields)
			}

			got, err := DonationFromRecord(stored(fields, "d-1", now))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tt.photos) == 0 {
				if len(got.PhotoURLs) != 0 {
					t.Errorf("PhotoURLs = %v, want empty", got.PhotoURLs)
				}
				return
			}
			if !reflect.DeepEqual(got.PhotoURLs, tt.photos) {
				t.Errorf("PhotoURLs = %v, want %v", got.PhotoURLs, tt.photos)
			}
		})
	}
}

func TestDonationFromRecord_MergesLegacyPhotoFields(t *testing.T) {
	t.Parallel()

	r := docstore.Record{
		FieldID:       "d-1",
		"imageUrls":   []any{"b", "c"},
		FieldPhotoURL: "a",
		"imageUrl":    "c",
	}
	got, err := DonationFromRecord(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"b", "c", "a"}
	if !reflect.DeepEqual(got.PhotoURLs, want) {
		t.Errorf("PhotoURLs = %v, want %v", got.PhotoURLs, want)
	}
}

// ---------------------------------------------------------------------------
// Legacy field names and encodings
// ---------------------------------------------------------------------------

func TestDonationFromRecord_LegacyFields(t *testing.T) {
	t.Parallel()

	r := docstore.Record{
		FieldID:          "d-1",
		"userId":         "donor-1",
		FieldTitle:       "Sofa",
		"category":       "Furniture",
		"targetBazaarId": "bz-1",
		"comment":        "check legs",
		"timestamp":      float64(1700000000000),
		FieldStatus:      "approved",
		FieldDelivered:   "true",
		FieldQRPayload:   base64.StdEncoding.EncodeToString([]byte("qr-bytes")),
	}
	got, err := DonationFromRecord(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DonorID != "donor-1" {
		t.Errorf("DonorID = %q", got.DonorID)
	}
	if !reflect.DeepEqual(got.Categories, []string{"Furniture"}) {
		t.Errorf("Categories = %v", got.Categories)
	}
	if got.BazaarID == nil || *got.BazaarID != "bz-1" {
		t.Errorf("BazaarID = %v", got.BazaarID)
	}
	if got.AdminComment == nil || *got.AdminComment != "check legs" {
		t.Errorf("AdminComment = %v", got.AdminComment)
	}
	if want := time.UnixMilli(1700000000000).UTC(); !got.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want)
	}
	if !got.IsDelivered() {
		t.Error("expected delivered flag from string value")
	}
	if string(got.QRPayload) != "qr-bytes" {
		t.Errorf("QRPayload = %q", got.QRPayload)
	}
}

func TestDonationFromRecord_TimeEncodings(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)
	for name, v := range map[string]any{
		"time":    want,
		"rfc3339": want.Format(time.RFC3339Nano),
		"seconds": float64(want.Unix()),
		"nanos":   want.UnixNano(),
		"exported": map[string]any{
			"seconds":     float64(want.Unix()),
			"nanoseconds": float64(0),
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := DonationFromRecord(docstore.Record{FieldID: "d-1", FieldReviewedAt: v})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ReviewedAt == nil || !got.ReviewedAt.Equal(want) {
				t.Errorf("ReviewedAt = %v, want %v", got.ReviewedAt, want)
			}
		})
	}
}

func TestDonationFromRecord_Status(t *testing.T) {
	t.Parallel()

	got, err := DonationFromRecord(docstore.Record{FieldID: "d-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.DonationStatusPending {
		t.Errorf("absent status = %q, want pending", got.Status)
	}

	_, err = DonationFromRecord(docstore.Record{FieldID: "d-1", FieldStatus: "archived"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown status: expected ErrValidation, got %v", err)
	}

	_, err = DonationFromRecord(docstore.Record{FieldTitle: "no id"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing id: expected ErrValidation, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Transition patches
// ---------------------------------------------------------------------------

func TestDonationChangeToRecord_OnlyTransitionFields(t *testing.T) {
	t.Parallel()

	d := domain.Donation{ID: "d-1", Status: domain.DonationStatusPending, PhotoURLs: []string{"a", "b"}}
	c, err := domain.PlanApproval(d, domain.ApprovalParams{
		ReviewerID: "admin-1",
		At:         time.Now(),
		QRPayload:  []byte("qr"),
		BazaarID:   strPtr("bz-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	patch := DonationChangeToRecord(c)
	for _, k := range []string{FieldPhotoURLs, FieldPhotoURL, FieldTitle, FieldCategories, FieldDonorID} {
		if _, ok := patch[k]; ok {
			t.Errorf("patch must not contain %q", k)
		}
	}
	for _, k := range []string{FieldStatus, FieldReviewerID, FieldReviewedAt, FieldQRPayload, FieldQRGeneratedAt, FieldBazaarID} {
		if _, ok := patch[k]; !ok {
			t.Errorf("patch missing %q", k)
		}
	}
	if patch[FieldStatus] != "approved" {
		t.Errorf("status = %v, want approved", patch[FieldStatus])
	}
}

func TestPrecondition(t *testing.T) {
	t.Parallel()

	pending := domain.Donation{ID: "d-1", Status: domain.DonationStatusPending}
	approve, err := domain.PlanApproval(pending, domain.ApprovalParams{ReviewerID: "admin-1", At: time.Now(), QRPayload: []byte("qr")})
	if err != nil {
		t.Fatalf("plan approval: %v", err)
	}
	approved := approve.Apply(pending)
	approved.BazaarID = strPtr("bz-1")
	deliver, _, err := domain.PlanDelivery(approved, time.Now())
	if err != nil {
		t.Fatalf("plan delivery: %v", err)
	}

	tests := []struct {
		name   string
		change domain.DonationChange
		want   map[string]any
	}{
		{
			name:   "pending accepts a missing status",
			change: approve,
			want:   map[string]any{FieldStatus: docstore.OrAbsent{Value: "pending"}},
		},
		{
			name:   "delivery requires approved and not yet delivered",
			change: deliver,
			want: map[string]any{
				FieldStatus:    "approved",
				FieldDelivered: docstore.OrAbsent{Value: false},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Precondition(tt.change); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Precondition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrecondition_MatchesLegacyRecord(t *testing.T) {
	t.Parallel()

	legacy := stored(docstore.Record{FieldTitle: "Old Lamp", legacyUserID: "u-1"}, "d-9", time.Now())
	d, err := DonationFromRecord(legacy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := domain.PlanRejection(d, domain.RejectionParams{ReviewerID: "admin-1", At: time.Now()})
	if err != nil {
		t.Fatalf("plan rejection: %v", err)
	}
	if !docstore.Satisfies(legacy, Precondition(c)) {
		t.Errorf("precondition %v does not match %v", Precondition(c), legacy)
	}
	if !docstore.Matches(legacy, []docstore.Filter{PendingFilter()}) {
		t.Error("pending filter does not match a record without status")
	}
}
