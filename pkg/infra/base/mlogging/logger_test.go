// 指示: miu200521358
package mlogging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	logger := NewLogger(nil)
	logger.SetLevel(logging.LOG_LEVEL_INFO)

	logger.Debug("隠れる: %d", 1)
	logger.Info("出る: %d", 2)

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 1 {
		t.Fatalf("line count mismatch: got=%d want=1 lines=%v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "出る: 2") {
		t.Fatalf("info line missing: %s", lines[0])
	}
	if logger.Level() != logging.LOG_LEVEL_INFO {
		t.Fatalf("level mismatch: got=%s want=%s", logger.Level(), logging.LOG_LEVEL_INFO)
	}
}

func TestLoggerWritesToOutputAndBuffer(t *testing.T) {
	out := bytes.NewBuffer(nil)
	logger := NewLogger(out)
	logger.SetLevel(logging.LOG_LEVEL_DEBUG)

	logger.Debug("debug line")
	logger.Warn("warn line")

	if !strings.Contains(out.String(), "debug line") || !strings.Contains(out.String(), "warn line") {
		t.Fatalf("output mismatch: %s", out.String())
	}
	if got := len(logger.MessageBuffer().Lines()); got != 2 {
		t.Fatalf("buffer line count mismatch: got=%d want=2", got)
	}

	logger.MessageBuffer().Clear()
	if got := len(logger.MessageBuffer().Lines()); got != 0 {
		t.Fatalf("buffer should be empty after clear: got=%d", got)
	}
}

func TestSetDefaultLoggerRoundTrip(t *testing.T) {
	prevLogger := logging.DefaultLogger()
	t.Cleanup(func() {
		logging.SetDefaultLogger(prevLogger)
	})

	logger := NewLogger(nil)
	logging.SetDefaultLogger(logger)
	if logging.DefaultLogger() != logger {
		t.Fatalf("default logger should be replaced")
	}
	logging.SetDefaultLogger(nil)
	if logging.DefaultLogger() != nil {
		t.Fatalf("default logger should be cleared")
	}
}
