package pozeclient

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestZerologLoggerEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf)

	logger.Info("request complete", "status", 200, "endpoint", "GET /ping")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "request complete" {
		t.Errorf("Expected message field, got %v", line["message"])
	}
	if line["status"] != float64(200) {
		t.Errorf("Expected status field 200, got %v", line["status"])
	}
	if line["endpoint"] != "GET /ping" {
		t.Errorf("Expected endpoint field, got %v", line["endpoint"])
	}
}

func TestZerologLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 log lines, got %d", len(lines))
	}
	for i, level := range []string{"debug", "info", "warn", "error"} {
		if !strings.Contains(lines[i], `"level":"`+level+`"`) {
			t.Errorf("Expected line %d at level %s, got %s", i, level, lines[i])
		}
	}
}

func TestZerologLoggerSkipsMalformedPairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf)

	// Odd trailing value and a non-string key are dropped, not panicked on.
	logger.Info("msg", "ok", 1, 42, "ignored", "dangling")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line: %v", err)
	}
	if line["ok"] != float64(1) {
		t.Errorf("Expected ok field kept, got %v", line)
	}
}
