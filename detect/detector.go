package detect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mutantlab/dnascan/cache"
	"github.com/mutantlab/dnascan/dna"
	"github.com/mutantlab/dnascan/observe"
	"github.com/mutantlab/dnascan/scan"
	"github.com/mutantlab/dnascan/stats"
)

// ErrFingerprint indicates the fingerprint digest could not be
// computed. The underlying cause is logged, never returned: callers
// only see a generic internal failure.
var ErrFingerprint = errors.New("detect: fingerprint computation failed")

// DefaultName is the detector name used when none is configured.
const DefaultName = "detector"

// Detector classifies DNA grids, caching verdicts by content fingerprint.
//
// Contract:
// - Concurrency: safe for concurrent use. Concurrent requests with the
//   same content trigger at most one scan and one counter increment.
// - Errors: a failed classification leaves the store and counters
//   untouched; validation errors pass through unwrapped so callers can
//   match the dna error types.
type Detector struct {
	name    string
	keyer   cache.Keyer
	store   cache.Store
	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer
	meta    observe.ScanMeta

	flights singleflight.Group
}

// Option configures a Detector.
type Option func(*Detector)

// WithName sets the detector name used in telemetry.
func WithName(name string) Option {
	return func(d *Detector) { d.name = name }
}

// WithKeyer replaces the default SHA-256 keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(d *Detector) { d.keyer = k }
}

// WithLogger sets the structured logger.
func WithLogger(l observe.Logger) Option {
	return func(d *Detector) { d.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(d *Detector) { d.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t observe.Tracer) Option {
	return func(d *Detector) { d.tracer = t }
}

// New creates a Detector over the given store. Telemetry defaults to
// no-ops; the keyer defaults to SHA-256.
func New(store cache.Store, opts ...Option) (*Detector, error) {
	if store == nil {
		return nil, cache.ErrNilStore
	}

	d := &Detector{
		name:    DefaultName,
		keyer:   cache.NewSHA256Keyer(),
		store:   store,
		logger:  observe.NewNoopLogger(),
		metrics: observe.NewNoopMetrics(),
		tracer:  observe.NewNoopTracer(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.meta = observe.ScanMeta{Detector: d.name, Store: storeKind(store)}
	d.logger = d.logger.WithDetector(d.meta)

	return d, nil
}

// storeKind names the store implementation for telemetry attributes.
func storeKind(s cache.Store) string {
	switch s.(type) {
	case *cache.MemoryStore:
		return "memory"
	case *cache.BadgerStore:
		return "badger"
	default:
		return ""
	}
}

// Classify reports whether the grid belongs to a mutant.
//
// The grid is re-validated here regardless of what the caller claims:
// validation errors are returned as the dna package's typed errors. On
// a cache hit the stored verdict is returned and nothing is counted;
// on a miss the grid is scanned, the verdict stored, and the matching
// counter incremented, all at most once per distinct content.
func (d *Detector) Classify(ctx context.Context, rows []string) (bool, error) {
	grid, err := dna.Parse(rows)
	if err != nil {
		return false, err
	}

	fingerprint, err := d.keyer.Key(grid)
	if err != nil {
		d.logger.Error(ctx, "fingerprint computation failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return false, ErrFingerprint
	}

	rec, ok, err := d.store.Lookup(ctx, fingerprint)
	if err != nil {
		return false, fmt.Errorf("detect: cache lookup: %w", err)
	}
	d.metrics.RecordLookup(ctx, d.meta, ok)
	if ok {
		d.logger.Debug(ctx, "verdict served from cache",
			observe.Field{Key: "fingerprint", Value: fingerprint},
		)
		return rec.Mutant, nil
	}

	// Collapse concurrent misses for the same content into one flight:
	// one scan, one insert, one increment.
	v, err, shared := d.flights.Do(fingerprint, func() (any, error) {
		return d.classifyMiss(ctx, grid, fingerprint)
	})
	if err != nil {
		return false, err
	}
	if shared {
		d.logger.Debug(ctx, "verdict shared from in-flight scan",
			observe.Field{Key: "fingerprint", Value: fingerprint},
		)
	}
	return v.(bool), nil
}

// classifyMiss runs inside a single flight for one fingerprint.
func (d *Detector) classifyMiss(ctx context.Context, grid dna.Grid, fingerprint string) (bool, error) {
	// A flight on another detector sharing the store may have inserted
	// the record between our miss and this call.
	if rec, ok, err := d.store.Lookup(ctx, fingerprint); err != nil {
		return false, fmt.Errorf("detect: cache lookup: %w", err)
	} else if ok {
		return rec.Mutant, nil
	}

	ctx, span := d.tracer.StartSpan(ctx, d.meta)
	start := time.Now()
	mutant := scan.IsMutant(grid)
	duration := time.Since(start)

	_, err := d.store.Insert(ctx, cache.Record{Fingerprint: fingerprint, Mutant: mutant})
	d.tracer.EndSpan(span, err)
	d.metrics.RecordScan(ctx, d.meta, mutant, duration, err)
	if err != nil {
		return false, fmt.Errorf("detect: store verdict: %w", err)
	}

	d.logger.Info(ctx, "grid classified",
		observe.Field{Key: "fingerprint", Value: fingerprint},
		observe.Field{Key: "grid_size", Value: grid.Size()},
		observe.Field{Key: "mutant", Value: mutant},
		observe.Field{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000.0},
	)
	return mutant, nil
}

// Statistics returns the aggregate counts over every distinct grid
// ever classified, with the derived mutant ratio. It never triggers a
// scan.
func (d *Detector) Statistics(ctx context.Context) (stats.Report, error) {
	counts, err := d.store.Counts(ctx)
	if err != nil {
		return stats.Report{}, fmt.Errorf("detect: read counters: %w", err)
	}
	return stats.NewReport(counts), nil
}
