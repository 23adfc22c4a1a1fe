package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records classification metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordScan records one grid scan with its verdict, duration and
	// error status.
	RecordScan(ctx context.Context, meta ScanMeta, mutant bool, duration time.Duration, err error)

	// RecordLookup records one cache lookup and whether it hit.
	RecordLookup(ctx context.Context, meta ScanMeta, hit bool)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	scanCount    metric.Int64Counter
	scanErrors   metric.Int64Counter
	durationHist metric.Float64Histogram
	lookupCount  metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	scanCount, err := meter.Int64Counter(
		"dna.scan.total",
		metric.WithDescription("Total number of grid scans"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, err
	}

	scanErrors, err := meter.Int64Counter(
		"dna.scan.errors",
		metric.WithDescription("Total number of failed classifications"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"dna.scan.duration_ms",
		metric.WithDescription("Grid scan duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	lookupCount, err := meter.Int64Counter(
		"dna.cache.lookups",
		metric.WithDescription("Total number of fingerprint cache lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		scanCount:    scanCount,
		scanErrors:   scanErrors,
		durationHist: durationHist,
		lookupCount:  lookupCount,
	}, nil
}

// RecordScan records metrics for one grid scan.
func (m *metricsImpl) RecordScan(ctx context.Context, meta ScanMeta, mutant bool, duration time.Duration, err error) {
	verdict := "human"
	if mutant {
		verdict = "mutant"
	}

	attrs := []attribute.KeyValue{
		attribute.String("detector.name", meta.Detector),
		attribute.String("scan.verdict", verdict),
	}
	if meta.Store != "" {
		attrs = append(attrs, attribute.String("store.kind", meta.Store))
	}
	opt := metric.WithAttributes(attrs...)

	m.scanCount.Add(ctx, 1, opt)
	if err != nil {
		m.scanErrors.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
}

// RecordLookup records one cache lookup.
func (m *metricsImpl) RecordLookup(ctx context.Context, meta ScanMeta, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	m.lookupCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("detector.name", meta.Detector),
		attribute.String("lookup.result", result),
	))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics creates a metrics implementation that discards everything.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordScan(ctx context.Context, meta ScanMeta, mutant bool, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordLookup(ctx context.Context, meta ScanMeta, hit bool) {}
