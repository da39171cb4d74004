package voice

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// FallbackPlayer wraps a primary player with automatic fallback to a
// secondary player when the primary cannot speak or fails consistently.
type FallbackPlayer struct {
	primary       InstructionPlayer
	fallback      InstructionPlayer
	failures      int
	maxFailures   int
	usingFallback bool
	logger        *log.Logger
	mu            sync.Mutex
}

// NewFallbackPlayer creates a player that falls back after maxFailures
// consecutive primary failures. A maxFailures below 1 is treated as 1.
func NewFallbackPlayer(primary, fallback InstructionPlayer, maxFailures int) *FallbackPlayer {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &FallbackPlayer{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
		logger:      log.Default(),
	}
}

// SetLogger sets the logger used by the player.
func (f *FallbackPlayer) SetLogger(logger *log.Logger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if logger != nil {
		f.logger = logger
	}
}

// active picks the player to speak through. f.mu must be held.
func (f *FallbackPlayer) active() InstructionPlayer {
	if f.usingFallback {
		return f.fallback
	}
	if f.primary.CanSpeak() || !f.fallback.CanSpeak() {
		return f.primary
	}
	return f.fallback
}

// Speak speaks through the active player, switching to the fallback after
// maxFailures consecutive primary errors.
func (f *FallbackPlayer) Speak(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	player := f.active()
	if player == f.fallback {
		return f.fallback.Speak(text)
	}

	err := player.Speak(text)
	if err == nil {
		if f.failures > 0 {
			f.logger.Info("Primary player recovered", "failures", f.failures)
			f.failures = 0
		}
		return nil
	}
	if !IsRecoverableError(err) {
		return err
	}

	f.failures++
	f.logger.Warn("Primary player failed", "attempt", f.failures, "max", f.maxFailures, "err", err)

	if f.failures < f.maxFailures {
		return err
	}

	f.logger.Warn("Switching to fallback player", "failures", f.failures)
	f.usingFallback = true
	if fbErr := f.fallback.Speak(text); fbErr != nil {
		return fmt.Errorf("both players failed: primary=%w, fallback=%w", err, fbErr)
	}
	return nil
}

// IsMuted reports the mute state of the primary player.
func (f *FallbackPlayer) IsMuted() bool {
	return f.primary.IsMuted()
}

// SetMuted mutes or unmutes both players.
func (f *FallbackPlayer) SetMuted(muted bool) {
	f.primary.SetMuted(muted)
	f.fallback.SetMuted(muted)
}

// OnOffRoute interrupts both players.
func (f *FallbackPlayer) OnOffRoute() {
	f.primary.OnOffRoute()
	f.fallback.OnOffRoute()
}

// SetListener registers listener on both players.
func (f *FallbackPlayer) SetListener(listener InstructionListener) {
	f.primary.SetListener(listener)
	f.fallback.SetListener(listener)
}

// CanSpeak reports whether either player can speak.
func (f *FallbackPlayer) CanSpeak() bool {
	return f.primary.CanSpeak() || f.fallback.CanSpeak()
}

// Shutdown shuts down both players.
func (f *FallbackPlayer) Shutdown() error {
	return errors.Join(f.primary.Shutdown(), f.fallback.Shutdown())
}

// Status returns a description of the active player.
func (f *FallbackPlayer) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.usingFallback {
		return fmt.Sprintf("Using fallback player (primary failed %d times)", f.failures)
	}
	if !f.primary.CanSpeak() && f.fallback.CanSpeak() {
		return "Using fallback player (primary unavailable)"
	}
	return fmt.Sprintf("Using primary player (failures: %d/%d)", f.failures, f.maxFailures)
}
