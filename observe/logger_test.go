package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func parseEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestLogger_IncludesDetectorFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	scoped := logger.WithDetector(ScanMeta{Detector: "primary", Store: "badger"})
	scoped.Info(context.Background(), "test message")

	entry := parseEntry(t, &buf)
	if v, ok := entry["detector.name"].(string); !ok || v != "primary" {
		t.Errorf("detector.name = %v, want \"primary\"", entry["detector.name"])
	}
	if v, ok := entry["store.kind"].(string); !ok || v != "badger" {
		t.Errorf("store.kind = %v, want \"badger\"", entry["store.kind"])
	}
	if v, ok := entry["msg"].(string); !ok || v != "test message" {
		t.Errorf("msg = %v, want \"test message\"", entry["msg"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "dropped")
	logger.Info(ctx, "dropped")
	if buf.Len() != 0 {
		t.Fatalf("debug/info output below warn level: %s", buf.String())
	}

	logger.Warn(ctx, "kept")
	logger.Error(ctx, "kept")
	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Errorf("got %d log lines, want 2", lines)
	}
}

// TestLogger_RedactsGridMaterial verifies grid content never reaches
// the log stream; only its fingerprint may appear.
func TestLogger_RedactsGridMaterial(t *testing.T) {
	for _, key := range []string{"dna", "rows", "grid", "sequence"} {
		t.Run(key, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter("info", &buf)

			logger.Info(context.Background(), "classified",
				Field{Key: key, Value: "ATCGCGATTACGGCTA"},
				Field{Key: "fingerprint", Value: "abc123"},
			)

			entry := parseEntry(t, &buf)
			if entry[key] != "[REDACTED]" {
				t.Errorf("%s = %v, want [REDACTED]", key, entry[key])
			}
			if entry["fingerprint"] != "abc123" {
				t.Errorf("fingerprint = %v, want \"abc123\"", entry["fingerprint"])
			}
		})
	}
}

func TestLogger_IncludesTimestampAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "boom", Field{Key: "error", Value: "store unavailable"})

	entry := parseEntry(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("level = %v, want \"error\"", entry["level"])
	}
	if _, ok := entry["timestamp"].(string); !ok {
		t.Error("timestamp missing from log entry")
	}
	if entry["error"] != "store unavailable" {
		t.Errorf("error = %v, want \"store unavailable\"", entry["error"])
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogLevel_String(t *testing.T) {
	levels := map[LogLevel]string{
		LevelDebug: "debug",
		LevelInfo:  "info",
		LevelWarn:  "warn",
		LevelError: "error",
	}
	for level, want := range levels {
		if got := level.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", level, got, want)
		}
	}
}
