package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ppiankov/tegra-fqd/internal/logging"
)

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("wrote control surface", "component", "commit", "path", "/sys/x", "value", 475000)

	line := buf.String()
	for _, want := range []string{" INFO commit: wrote control surface", "path=/sys/x", "value=475000"} {
		if !strings.Contains(line, want) {
			t.Errorf("missing %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component should be rendered as prefix, got %q", line)
	}
}

func TestConsoleQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Error("write failed", "error", errors.New("permission denied"))
	if !strings.Contains(buf.String(), `error="permission denied"`) {
		t.Errorf("error value not quoted: %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("cycle committed", "max_freq", 1500000)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if rec["level"] != "info" {
		t.Errorf("level = %v, want info", rec["level"])
	}
	if _, ok := rec["ts"]; !ok {
		t.Error("missing ts key")
	}
	if rec["max_freq"] != float64(1500000) {
		t.Errorf("max_freq = %v", rec["max_freq"])
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestGroupedAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.WithGroup("policy").Info("resolved", "max", 1)
	if !strings.Contains(buf.String(), "policy.max=1") {
		t.Errorf("grouped attr not flattened: %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger should not be enabled")
	}
	logger.Error("dropped")
}

func TestFatalLogsAtError(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logging.Fatal(logger, "add watch", errors.New("no such file"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if rec["level"] != "error" {
		t.Errorf("level = %v, want error", rec["level"])
	}
	if rec["msg"] != "FATAL ERROR: add watch" || rec["error"] != "no such file" {
		t.Errorf("record = %v", rec)
	}
}
