// Package cache holds the bazaar list between reads. Entries expire after a
// TTL and are dropped explicitly when a bazaar changes.
package cache

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// ListKey is the key the bazaar list is cached under.
const ListKey = "bazaar:list"

// Memory is an in-process bazaar list cache.
type Memory struct {
	lru *expirable.LRU[string, []domain.Bazaar]
}

// NewMemory creates a Memory cache whose entry lives for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, []domain.Bazaar](1, nil, ttl)}
}

// Get returns the cached list and whether it was present.
func (m *Memory) Get(_ context.Context) ([]domain.Bazaar, bool, error) {
	items, ok := m.lru.Get(ListKey)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(items), true, nil
}

// Set replaces the cached list.
func (m *Memory) Set(_ context.Context, items []domain.Bazaar) error {
	m.lru.Add(ListKey, slices.Clone(items))
	return nil
}

// Invalidate drops the cached list.
func (m *Memory) Invalidate(_ context.Context) error {
	m.lru.Remove(ListKey)
	return nil
}
