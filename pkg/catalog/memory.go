package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It is the default when no MongoDB URI
// is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]Entry),
		now:     time.Now,
	}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, s.now())
	if err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Junction] = append(s.entries[e.Junction], e)
	return e, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, junction string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.entries[junction]
	if len(history) == 0 {
		return Entry{}, notFound(junction)
	}
	return latest(history), nil
}

// List implements Store.
func (s *MemoryStore) List(context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, history := range s.entries {
		out = append(out, latest(history))
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Junction, b.Junction) })
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

// latest returns the entry with the newest CreatedAt; ties go to the one
// inserted last.
func latest(history []Entry) Entry {
	best := history[0]
	for _, e := range history[1:] {
		if !e.CreatedAt.Before(best.CreatedAt) {
			best = e
		}
	}
	return best
}

var _ Store = (*MemoryStore)(nil)
