package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/mutantlab/dnascan/stats"
)

// Key layout inside Badger. Records and counters share one keyspace so
// a single transaction can touch both.
var (
	recordPrefix  = []byte("rec/")
	mutantCounter = []byte("cnt/mutant")
	humanCounter  = []byte("cnt/human")
)

// BadgerConfig holds configuration for a Badger-backed store.
type BadgerConfig struct {
	// Path is the directory for database files. Required unless
	// InMemory is true; created if it does not exist.
	Path string

	// InMemory keeps all data in memory with no disk persistence.
	// Useful for tests.
	InMemory bool

	// SyncWrites makes every commit durable before returning.
	SyncWrites bool
}

// DefaultBadgerConfig returns a durable on-disk configuration rooted
// at path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryBadgerConfig returns a configuration for tests: in-memory,
// no sync.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// BadgerStore is a persistent Store backed by BadgerDB. Record writes
// and counter increments share one transaction, so Badger's conflict
// detection gives the insert-plus-increment atomicity the Store
// contract requires.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens a BadgerDB at the configured location and wraps it
// in a BadgerStore. The caller must Close the store when done.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("cache: path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("cache: create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	opts = opts.WithLogger(nil) // Badger's internal logging is off; callers log at the store boundary.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open badger store: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already-open BadgerDB. The caller retains
// ownership of the database lifecycle.
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	if db == nil {
		return nil, errors.New("cache: badger db is nil")
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Lookup reads the record for a fingerprint in a read-only transaction.
func (s *BadgerStore) Lookup(ctx context.Context, fingerprint string) (Record, bool, error) {
	if fingerprint == "" {
		return Record{}, false, ErrEmptyFingerprint
	}
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}

	var (
		found  bool
		mutant bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			found = true
			mutant = decodeVerdict(val)
			return nil
		})
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("cache: lookup %s: %w", fingerprint, mapBadgerErr(err))
	}
	if !found {
		return Record{}, false, nil
	}
	return Record{Fingerprint: fingerprint, Mutant: mutant}, true, nil
}

// Insert stores the record and bumps the matching counter in one
// transaction. Concurrent inserts that touch the same keys conflict at
// commit; the losers retry against fresh state and observe the
// existing record, so exactly one insert and one increment survive.
func (s *BadgerStore) Insert(ctx context.Context, rec Record) (bool, error) {
	if rec.Fingerprint == "" {
		return false, ErrEmptyFingerprint
	}

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		inserted, err := s.tryInsert(rec)
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("cache: insert %s: %w", rec.Fingerprint, mapBadgerErr(err))
		}
		return inserted, nil
	}
}

func (s *BadgerStore) tryInsert(rec Record) (bool, error) {
	inserted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		key := recordKey(rec.Fingerprint)

		_, err := txn.Get(key)
		if err == nil {
			// Already stored; the first verdict wins.
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(key, encodeVerdict(rec.Mutant)); err != nil {
			return err
		}

		counter := humanCounter
		if rec.Mutant {
			counter = mutantCounter
		}
		n, err := readCounter(txn, counter)
		if err != nil {
			return err
		}
		if err := txn.Set(counter, encodeCounter(n+1)); err != nil {
			return err
		}

		inserted = true
		return nil
	})
	return inserted, err
}

// Counts reads both counters in one read-only transaction, so the
// snapshot is consistent.
func (s *BadgerStore) Counts(ctx context.Context) (stats.Counts, error) {
	if err := ctx.Err(); err != nil {
		return stats.Counts{}, err
	}

	var counts stats.Counts
	err := s.db.View(func(txn *badger.Txn) error {
		mutant, err := readCounter(txn, mutantCounter)
		if err != nil {
			return err
		}
		human, err := readCounter(txn, humanCounter)
		if err != nil {
			return err
		}
		counts = stats.Counts{Mutant: mutant, Human: human}
		return nil
	})
	if err != nil {
		return stats.Counts{}, fmt.Errorf("cache: read counters: %w", mapBadgerErr(err))
	}
	return counts, nil
}

// mapBadgerErr translates Badger lifecycle errors to the store's
// sentinels so callers match on cache errors, not driver errors.
func mapBadgerErr(err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrStoreClosed
	}
	return err
}

func recordKey(fingerprint string) []byte {
	key := make([]byte, 0, len(recordPrefix)+len(fingerprint))
	key = append(key, recordPrefix...)
	key = append(key, fingerprint...)
	return key
}

func encodeVerdict(mutant bool) []byte {
	if mutant {
		return []byte{1}
	}
	return []byte{0}
}

func decodeVerdict(val []byte) bool {
	return len(val) == 1 && val[0] == 1
}

func encodeCounter(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func readCounter(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var n uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("cache: counter %s has %d bytes, want 8", key, len(val))
		}
		n = binary.BigEndian.Uint64(val)
		return nil
	})
	return n, err
}

// Ensure BadgerStore implements Store
var _ Store = (*BadgerStore)(nil)
