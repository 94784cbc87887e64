package failsafe

import (
	"errors"
	"testing"
)

func TestFetch_ReturnsValueOnSuccess(t *testing.T) {
	got := Fetch("test.ok", -1, func() (int, error) { return 42, nil })
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestFetch_ReturnsFallbackOnError(t *testing.T) {
	got := Fetch("test.fail", "fallback", func() (string, error) {
		return "partial", errors.New("store unreachable")
	})
	if got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestRun_ReportsOutcome(t *testing.T) {
	if !Run("test.ok", func() error { return nil }) {
		t.Error("expected true for nil error")
	}
	if Run("test.fail", func() error { return errors.New("boom") }) {
		t.Error("expected false for error")
	}
}
