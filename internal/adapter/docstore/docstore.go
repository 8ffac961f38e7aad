// Package docstore defines the narrow document store contract the core
// persists through, plus the in-process query engine shared by stores that
// cannot filter and order natively.
package docstore

import (
	"context"
	"time"
)

// Record is a loosely-typed stored document.
type Record = map[string]any

// System fields assigned by every store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
)

// Filter is an equality match on a top-level field. Filters are ANDed.
type Filter struct {
	Field string
	Value any
}

// OrderBy orders a query by one field; the id breaks ties in the same
// direction.
type OrderBy struct {
	Field string
	Desc  bool
}

// Cursor identifies the last record of a previous page.
type Cursor struct {
	Value any
	ID    string
}

// Query selects records from one collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    OrderBy
	Limit      int
	After      *Cursor
}

// Result is one page of a query. Next is set when the page is full.
type Result struct {
	Records []Record
	Next    *Cursor
}

// OrAbsent is a filter or precondition value that also matches records
// where the field is missing or null.
type OrAbsent struct {
	Value any
}

// UpdateOptions controls Update. With MergeOnly the given fields are merged
// into the record, otherwise they replace all user fields. Precondition maps
// field names to the values the stored record must hold for the write to
// apply.
type UpdateOptions struct {
	MergeOnly    bool
	Precondition map[string]any
}

// Store is implemented by every document store backend.
//
// Errors: a missing record is domain.ErrNotFound, a failed precondition is
// domain.ErrConflict, and network or availability failures are
// domain.ErrTransient.
type Store interface {
	Create(ctx context.Context, collection string, fields Record) (string, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	Put(ctx context.Context, collection, id string, fields Record) error
	Update(ctx context.Context, collection, id string, fields Record, opts UpdateOptions) error
	Query(ctx context.Context, q Query) (Result, error)
	Ping(ctx context.Context) error
}

// CursorOf returns the cursor positioned on r for the given ordering.
func CursorOf(r Record, order OrderBy) *Cursor {
	id, _ := r[FieldID].(string)
	return &Cursor{Value: r[order.Field], ID: id}
}

// WithSystemFields copies fields and sets the system fields on the copy.
func WithSystemFields(fields Record, id string, createdAt time.Time) Record {
	out := Clone(fields)
	out[FieldID] = id
	out[FieldCreatedAt] = createdAt
	return out
}

// NoTx runs functions directly for stores without transactions.
type NoTx struct{}

// RunInTx calls fn with ctx.
func (NoTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
