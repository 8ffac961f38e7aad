package donation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// CreateInput holds the donor's submission.
type CreateInput struct {
	Title             string
	Description       string
	PhotoURLs         []string
	Categories        []string
	PreferredBazaarID *string
	NeedsTransport    *bool
}

// Validate checks all fields and collects all errors. minPhotos is the
// required number of distinct photos.
func (i CreateInput) Validate(minPhotos int) error {
	var errs []domain.FieldError

	title := strings.TrimSpace(i.Title)
	if title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		errs = append(errs, domain.FieldError{Field: "title", Message: "max 120 characters"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(i.Description)) > MaxDescriptionLength {
		errs = append(errs, domain.FieldError{Field: "description", Message: "max 2000 characters"})
	}
	if n := len(distinct(i.PhotoURLs)); n < minPhotos {
		errs = append(errs, domain.FieldError{Field: "photo_urls", Message: photoMessage(minPhotos)})
	}
	if len(distinct(i.Categories)) == 0 {
		errs = append(errs, domain.FieldError{Field: "categories", Message: "at least one category required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func photoMessage(minPhotos int) string {
	if minPhotos == 1 {
		return "at least 1 photo required"
	}
	return "at least " + strconv.Itoa(minPhotos) + " distinct photos required"
}

// PhotoUpload is one image to store before a donation is created.
type PhotoUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ValidatePhotos checks a batch of uploads.
func ValidatePhotos(photos []PhotoUpload) error {
	if len(photos) == 0 {
		return domain.NewValidationError("photos", "required")
	}
	var errs []domain.FieldError
	for n, p := range photos {
		field := "photos[" + strconv.Itoa(n) + "]"
		if len(p.Data) == 0 {
			errs = append(errs, domain.FieldError{Field: field, Message: "empty file"})
		}
		if !strings.HasPrefix(p.ContentType, "image/") {
			errs = append(errs, domain.FieldError{Field: field, Message: "must be an image"})
		}
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// PhotoSet is the result of an upload batch: the folder and the URLs in
// input order.
type PhotoSet struct {
	Folder string
	URLs   []string
}

// ApproveInput holds the admin's approval.
type ApproveInput struct {
	DonationID string
	BazaarID   *string
	Comment    *string
}

// Validate checks all fields and collects all errors.
func (i ApproveInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(i.DonationID) == "" {
		errs = append(errs, domain.FieldError{Field: "donation_id", Message: "required"})
	}
	if i.Comment != nil && utf8.RuneCountInString(strings.TrimSpace(*i.Comment)) > MaxComment {
		errs = append(errs, domain.FieldError{Field: "comment", Message: "max 1000 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RejectInput holds the admin's rejection.
type RejectInput struct {
	DonationID string
	Comment    *string
}

// Validate checks all fields and collects all errors.
func (i RejectInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(i.DonationID) == "" {
		errs = append(errs, domain.FieldError{Field: "donation_id", Message: "required"})
	}
	if i.Comment != nil && utf8.RuneCountInString(strings.TrimSpace(*i.Comment)) > MaxComment {
		errs = append(errs, domain.FieldError{Field: "comment", Message: "max 1000 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// AssignBazaarInput retargets a donation.
type AssignBazaarInput struct {
	DonationID string
	BazaarID   string
}

// Validate checks all fields and collects all errors.
func (i AssignBazaarInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(i.DonationID) == "" {
		errs = append(errs, domain.FieldError{Field: "donation_id", Message: "required"})
	}
	if strings.TrimSpace(i.BazaarID) == "" {
		errs = append(errs, domain.FieldError{Field: "bazaar_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// distinct trims, drops blanks and removes duplicates keeping first
// occurrence order.
func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
