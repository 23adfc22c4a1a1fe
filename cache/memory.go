package cache

import (
	"context"
	"sync"

	"github.com/mutantlab/dnascan/stats"
)

// MemoryStore keeps records and counters in process memory. Records
// have no expiry: a verdict is an immutable fact about its content and
// lives for the store's lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	counts  stats.Counts
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// Lookup returns the record for a fingerprint, or ok=false on miss.
func (s *MemoryStore) Lookup(_ context.Context, fingerprint string) (Record, bool, error) {
	if fingerprint == "" {
		return Record{}, false, ErrEmptyFingerprint
	}

	s.mu.RLock()
	rec, ok := s.records[fingerprint]
	s.mu.RUnlock()

	return rec, ok, nil
}

// Insert stores the record if absent. The counter increment happens
// under the same lock as the map write, so the pair is atomic.
func (s *MemoryStore) Insert(_ context.Context, rec Record) (bool, error) {
	if rec.Fingerprint == "" {
		return false, ErrEmptyFingerprint
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.Fingerprint]; ok {
		return false, nil
	}

	s.records[rec.Fingerprint] = rec
	if rec.Mutant {
		s.counts.Mutant++
	} else {
		s.counts.Human++
	}

	return true, nil
}

// Counts returns a snapshot of the counters.
func (s *MemoryStore) Counts(_ context.Context) (stats.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
