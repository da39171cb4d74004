package voice

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestPlayerError tests the PlayerError type.
func TestPlayerError(t *testing.T) {
	base := errors.New("device busy")
	err := NewPlayerError(base, "player", "speak")

	if got := err.Error(); got != "player: speak: device busy" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, base) {
		t.Error("PlayerError should unwrap to the underlying error")
	}

	empty := &PlayerError{Component: "engine", Action: "stop"}
	if got := empty.Error(); got != "engine: stop failed" {
		t.Errorf("Error() without cause = %q", got)
	}
}

// TestIsRecoverableError tests error classification.
func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"speak failed", ErrSpeakFailed, true},
		{"engine unavailable", ErrEngineUnavailable, true},
		{"engine shutdown", ErrEngineShutdown, false},
		{"player shutdown", ErrPlayerShutdown, false},
		{"language unsupported", ErrLanguageUnsupported, false},
		{"invalid config", fmt.Errorf("loading: %w", ErrInvalidConfig), false},
		{"unknown engine", fmt.Errorf("%w: %q", ErrUnknownEngine, "espeak"), false},
		{"wrapped shutdown", NewPlayerError(ErrPlayerShutdown, "player", "speak"), false},
		{"other", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverableError(tt.err); got != tt.want {
				t.Errorf("IsRecoverableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestErrorMessages tests that sentinel errors have distinct messages.
func TestErrorMessages(t *testing.T) {
	all := []error{
		ErrEngineUnavailable, ErrEngineInitFailed, ErrEngineShutdown,
		ErrLanguageUnsupported, ErrMissingLanguage, ErrSpeakFailed,
		ErrPlayerShutdown, ErrInvalidConfig, ErrUnknownEngine,
	}

	seen := make(map[string]bool)
	for _, err := range all {
		msg := err.Error()
		if strings.TrimSpace(msg) == "" {
			t.Errorf("error has empty message")
		}
		if seen[msg] {
			t.Errorf("duplicate error message %q", msg)
		}
		seen[msg] = true
	}
}
