package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLevel verifies level resolution
func TestLevel(t *testing.T) {
	if l, _ := Level("warn", true); l != zerolog.DebugLevel {
		t.Errorf("Expected debug when verbose, got %s", l)
	}
	if l, _ := Level("", false); l != zerolog.InfoLevel {
		t.Errorf("Expected info by default, got %s", l)
	}
	if l, err := Level("error", false); err != nil || l != zerolog.ErrorLevel {
		t.Errorf("Expected error level, got %s (%v)", l, err)
	}
	if _, err := Level("loud", false); err == nil {
		t.Error("Expected error for unknown level, got nil")
	}
}

// TestNewFiltersLevel verifies that events below the level are dropped
func TestNewFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel)

	log.Debug().Msg("hidden")
	log.Info().Str("component", "test").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug event to be filtered")
	}
	if !strings.Contains(out, `"component":"test"`) || !strings.Contains(out, "shown") {
		t.Errorf("Expected info event in output, got %q", out)
	}
}
