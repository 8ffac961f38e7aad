// Package memory is an in-process document store used for local runs and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// Store keeps collections in maps guarded by a mutex. Records are copied on
// the way in and out.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]docstore.Record
	now         func() time.Time
	newID       func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs sets the id generator used by Create.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]docstore.Record),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) collection(name string) map[string]docstore.Record {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]docstore.Record)
		s.collections[name] = c
	}
	return c
}

// Create stores fields under a new id.
func (s *Store) Create(_ context.Context, collection string, fields docstore.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.collection(collection)[id] = docstore.WithSystemFields(fields, id, s.now().UTC())
	return id, nil
}

// Get returns a copy of the record.
func (s *Store) Get(_ context.Context, collection, id string) (docstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	return docstore.Clone(r), nil
}

// Put upserts the record, keeping createdAt of an existing record.
func (s *Store) Put(_ context.Context, collection, id string, fields docstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	createdAt := s.now().UTC()
	if existing, ok := c[id]; ok {
		if t, ok := existing[docstore.FieldCreatedAt].(time.Time); ok {
			createdAt = t
		}
	}
	c[id] = docstore.WithSystemFields(fields, id, createdAt)
	return nil
}

// Update merges or replaces fields after checking the precondition.
func (s *Store) Update(_ context.Context, collection, id string, fields docstore.Record, opts docstore.UpdateOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	if !docstore.Satisfies(existing, opts.Precondition) {
		return fmt.Errorf("%s %s: precondition failed: %w", collection, id, domain.ErrConflict)
	}

	if opts.MergeOnly {
		docstore.Merge(existing, fields)
		return nil
	}
	createdAt := existing[docstore.FieldCreatedAt]
	next := docstore.Clone(fields)
	next[docstore.FieldID] = id
	next[docstore.FieldCreatedAt] = createdAt
	s.collections[collection][id] = next
	return nil
}

// Query runs q over the whole collection.
func (s *Store) Query(_ context.Context, q docstore.Query) (docstore.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collections[q.Collection]
	candidates := make([]docstore.Record, 0, len(c))
	for _, r := range c {
		candidates = append(candidates, r)
	}
	return docstore.Execute(candidates, q), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of records in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}
