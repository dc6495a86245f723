// Package index aggregates a documentation tree's model cards into a
// results index.
package index

import (
	"sort"
	"sync"
	"time"

	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/lint"
)

// Entry is one indexed card together with its lint findings.
type Entry struct {
	Card      *card.Card     `json:"card"`
	Findings  []lint.Finding `json:"findings,omitempty"`
	IndexedAt time.Time      `json:"indexed_at"`
}

// Registry stores indexed cards keyed by card ID.
type Registry struct {
	entries map[string]*Entry
	mu      sync.RWMutex
}

// NewRegistry creates a new card registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Set adds an entry to the registry.
func (r *Registry) Set(entry *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[entry.Card.ID] = entry
}

// Get returns the entry with the given card ID.
func (r *Registry) Get(id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	return entry, ok
}

// List returns all entries sorted by card ID.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Card.ID < entries[j].Card.ID
	})

	return entries
}

// Delete deletes the entry with the given card ID.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
}

// Len returns the number of indexed cards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
