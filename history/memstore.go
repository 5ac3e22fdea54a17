package history

import (
	"context"
	"sync"
	"time"
)

// MemStore is a thread-safe in-memory history store. Contents are lost on
// process restart; this is the documented default behavior.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry // source -> entries in append order
}

// NewMemStore creates a new in-memory history store.
func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[string][]Entry),
	}
}

func (s *MemStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Source] = append(s.entries[entry.Source], entry)
	return nil
}

func (s *MemStore) List(_ context.Context, source string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[source]
	result := make([]Entry, len(all))
	copy(result, all)
	return result, nil
}

func (s *MemStore) Latest(_ context.Context, source string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[source]
	if len(all) == 0 {
		return Entry{}, false, nil
	}
	return all[len(all)-1], true, nil
}

func (s *MemStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for source, all := range s.entries {
		kept := all[:0]
		for _, e := range all {
			if e.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(s.entries, source)
			continue
		}
		s.entries[source] = kept
	}
	return removed, nil
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)
