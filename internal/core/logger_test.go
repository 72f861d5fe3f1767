package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := noopLogger{}
	logger.Debug("msg", "key", "value")
	logger.Info("msg", "key", "value")
	logger.Warn("msg", "key", "value")
	logger.Error("msg", "key", "value")
}

func TestZerologLoggerEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	logger.Info("gene set queried", "input_symbols", 3, "enriched_pathways", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v (%s)", err, buf.String())
	}
	if entry["message"] != "gene set queried" {
		t.Fatalf("unexpected message: %v", entry)
	}
	if entry["input_symbols"] != float64(3) || entry["enriched_pathways"] != float64(2) {
		t.Fatalf("fields missing: %v", entry)
	}
}

func TestZerologLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	logger.Debug("d")
	logger.Warn("w")
	logger.Error("e")

	out := buf.String()
	for _, level := range []string{"debug", "warn", "error"} {
		if !strings.Contains(out, `"level":"`+level+`"`) {
			t.Errorf("missing %s entry in %s", level, out)
		}
	}
}

func TestPairsToleratesOddArgs(t *testing.T) {
	fields := pairs([]any{"a", 1, "dangling"})
	if fields["a"] != 1 {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if v, ok := fields["dangling"]; !ok || v != nil {
		t.Fatalf("dangling key must be kept with nil value: %v", fields)
	}
	if pairs(nil) != nil {
		t.Fatalf("empty args must yield nil map")
	}
}
