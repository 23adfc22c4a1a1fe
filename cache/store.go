package cache

import (
	"context"
	"errors"

	"github.com/mutantlab/dnascan/stats"
)

// Sentinel errors for store operations.
var (
	ErrNilStore         = errors.New("cache: store is nil")
	ErrEmptyFingerprint = errors.New("cache: fingerprint is empty")
	ErrStoreClosed      = errors.New("cache: store is closed")
)

// Record is one classification verdict, keyed by grid fingerprint.
// Records are immutable: once a fingerprint is stored its verdict
// never changes.
type Record struct {
	Fingerprint string
	Mutant      bool
}

// Store maps fingerprints to classification records and owns the
// aggregate counters derived from them.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use;
//   lookups may run fully concurrently.
// - Atomicity: Insert stores the record and increments the matching
//   counter as one unit, or does neither. Counts therefore always
//   equal the set of distinct fingerprints ever inserted.
// - Idempotence: Insert on an existing fingerprint changes nothing
//   and reports inserted=false; the first stored verdict wins.
type Store interface {
	// Lookup returns the record for a fingerprint, or ok=false on miss.
	Lookup(ctx context.Context, fingerprint string) (Record, bool, error)

	// Insert stores the record if its fingerprint is absent and
	// increments the matching counter. Reports whether this call
	// performed the insert.
	Insert(ctx context.Context, rec Record) (bool, error)

	// Counts returns a snapshot of the mutant and human counters.
	Counts(ctx context.Context) (stats.Counts, error)
}
