package voice

import (
	"errors"
	"fmt"
)

// Common errors for voice instruction playback.
var (
	// Engine errors
	ErrEngineUnavailable   = errors.New("speech engine is not available")
	ErrEngineInitFailed    = errors.New("speech engine initialization failed")
	ErrEngineShutdown      = errors.New("speech engine has been shut down")
	ErrLanguageUnsupported = errors.New("language is not supported by the speech engine")
	ErrMissingLanguage     = errors.New("no language configured")
	ErrSpeakFailed         = errors.New("speech engine rejected utterance")

	// Player errors
	ErrPlayerShutdown = errors.New("speech player has been shut down")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnknownEngine = errors.New("unknown speech engine")
)

// IsRecoverableError checks if an error is recoverable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, ErrEngineShutdown),
		errors.Is(err, ErrPlayerShutdown),
		errors.Is(err, ErrLanguageUnsupported),
		errors.Is(err, ErrMissingLanguage),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnknownEngine):
		return false
	}

	return true
}

// PlayerError provides detailed error information.
type PlayerError struct {
	Err       error  // The underlying error
	Component string // Component that generated the error
	Action    string // Action being performed when error occurred
}

// Error implements the error interface.
func (e *PlayerError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Component, e.Action)
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
}

// Unwrap returns the underlying error.
func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new error with context.
func NewPlayerError(err error, component, action string) *PlayerError {
	return &PlayerError{
		Err:       err,
		Component: component,
		Action:    action,
	}
}
