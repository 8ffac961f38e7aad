package domain

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// PageKey is the sort key of a paginated view: creation time, then id.
type PageKey struct {
	CreatedAt time.Time
	ID        string
}

// Encode returns the opaque continuation token for the key.
func (k PageKey) Encode() string {
	raw := strconv.FormatInt(k.CreatedAt.UTC().UnixNano(), 10) + "|" + k.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodePageToken parses a token produced by PageKey.Encode. An empty token
// means "first page" and returns nil.
func DecodePageToken(token string) (*PageKey, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, NewValidationError("page_token", "malformed")
	}
	nanos, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, NewValidationError("page_token", "malformed")
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, NewValidationError("page_token", "malformed")
	}
	return &PageKey{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

// PageRequest asks for one page of a view. Query is an optional search
// refinement applied to the fetched page.
type PageRequest struct {
	Token string
	Query string
}

// Page is one page of a view.
type Page[T any] struct {
	Items     []T
	NextToken string
	HasMore   bool
}
