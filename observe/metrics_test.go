package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("metric %s not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordScan(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := ScanMeta{Detector: "primary", Store: "memory"}

	m.RecordScan(context.Background(), meta, true, 3*time.Millisecond, nil)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "dna.scan.total"); got != 1 {
		t.Errorf("dna.scan.total = %d, want 1", got)
	}

	hist := findMetric(rm, "dna.scan.duration_ms")
	if hist == nil {
		t.Fatal("dna.scan.duration_ms metric not found")
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", hist.Data)
	}
	if len(data.DataPoints) == 0 || data.DataPoints[0].Count != 1 {
		t.Error("duration histogram did not record the scan")
	}
}

func TestMetrics_VerdictAttribute(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := ScanMeta{Detector: "primary"}
	ctx := context.Background()

	m.RecordScan(ctx, meta, true, time.Millisecond, nil)
	m.RecordScan(ctx, meta, false, time.Millisecond, nil)
	m.RecordScan(ctx, meta, false, time.Millisecond, nil)

	rm := collect(t, reader)
	metric := findMetric(rm, "dna.scan.total")
	if metric == nil {
		t.Fatal("dna.scan.total metric not found")
	}
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", metric.Data)
	}

	byVerdict := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		if v, found := dp.Attributes.Value(attribute.Key("scan.verdict")); found {
			byVerdict[v.AsString()] += dp.Value
		}
	}
	if byVerdict["mutant"] != 1 {
		t.Errorf("mutant scans = %d, want 1", byVerdict["mutant"])
	}
	if byVerdict["human"] != 2 {
		t.Errorf("human scans = %d, want 2", byVerdict["human"])
	}
}

func TestMetrics_ErrorCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := ScanMeta{Detector: "primary"}
	ctx := context.Background()

	m.RecordScan(ctx, meta, false, time.Millisecond, nil)
	m.RecordScan(ctx, meta, false, time.Millisecond, errors.New("store unavailable"))

	rm := collect(t, reader)
	if got := sumValue(t, rm, "dna.scan.errors"); got != 1 {
		t.Errorf("dna.scan.errors = %d, want 1", got)
	}
	if got := sumValue(t, rm, "dna.scan.total"); got != 2 {
		t.Errorf("dna.scan.total = %d, want 2", got)
	}
}

func TestMetrics_RecordLookup(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := ScanMeta{Detector: "primary"}
	ctx := context.Background()

	m.RecordLookup(ctx, meta, true)
	m.RecordLookup(ctx, meta, true)
	m.RecordLookup(ctx, meta, false)

	rm := collect(t, reader)
	metric := findMetric(rm, "dna.cache.lookups")
	if metric == nil {
		t.Fatal("dna.cache.lookups metric not found")
	}
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", metric.Data)
	}

	byResult := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		if v, found := dp.Attributes.Value(attribute.Key("lookup.result")); found {
			byResult[v.AsString()] += dp.Value
		}
	}
	if byResult["hit"] != 2 {
		t.Errorf("hits = %d, want 2", byResult["hit"])
	}
	if byResult["miss"] != 1 {
		t.Errorf("misses = %d, want 1", byResult["miss"])
	}
}

func TestNoopMetrics(t *testing.T) {
	m := NewNoopMetrics()
	ctx := context.Background()

	// Must not panic.
	m.RecordScan(ctx, ScanMeta{Detector: "x"}, true, time.Millisecond, nil)
	m.RecordLookup(ctx, ScanMeta{Detector: "x"}, false)
}
