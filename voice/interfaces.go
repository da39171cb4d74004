// Package voice announces navigation instructions through a speech engine.
package voice

import (
	"context"

	"golang.org/x/text/language"
)

// DefaultUtteranceID is attached to every utterance queued by SpeechPlayer.
const DefaultUtteranceID = "default_id"

// InstructionPlayer plays voice instructions.
type InstructionPlayer interface {
	// Speak queues an instruction for playback.
	Speak(text string) error

	// IsMuted reports whether instructions are currently muted.
	IsMuted() bool

	// SetMuted mutes or unmutes instructions. Muting interrupts playback.
	SetMuted(muted bool)

	// OnOffRoute interrupts playback without changing the mute state.
	OnOffRoute()

	// SetListener registers the single instruction listener.
	SetListener(listener InstructionListener)

	// CanSpeak reports whether the player is able to produce audio.
	CanSpeak() bool

	// Shutdown stops playback and releases the engine.
	Shutdown() error
}

// InstructionListener receives progress notifications for instructions.
type InstructionListener interface {
	OnStart()
	OnDone()
	OnError(interrupted bool)
}

// Engine is the speech engine a SpeechPlayer drives.
//
// Progress callbacks must be delivered from an engine goroutine, never from
// inside Speak, Stop or Shutdown, and those methods must not wait for
// callbacks to return.
type Engine interface {
	// Speak queues text for synthesis and playback.
	Speak(text string, mode QueueMode, params Params) error

	// IsSpeaking reports whether an utterance is being played or is still
	// waiting in the queue.
	IsSpeaking() bool

	// Stop interrupts the current utterance and drops queued ones.
	Stop() error

	// Shutdown releases the engine. The engine is unusable afterwards.
	Shutdown() error

	// SetLanguage selects the language for subsequent utterances.
	SetLanguage(tag language.Tag) error

	// IsLanguageAvailable reports how well the engine supports tag.
	IsLanguageAvailable(tag language.Tag) LanguageAvailability

	// SetProgressListener registers the utterance progress listener.
	SetProgressListener(listener ProgressListener)
}

// ProgressListener receives utterance progress from an engine. Calls are
// made on an engine goroutine.
type ProgressListener interface {
	OnStart(utteranceID string)
	OnDone(utteranceID string)
	OnError(utteranceID string, err error)
	OnStop(utteranceID string, interrupted bool)
}

// InitStatus is reported by an engine once initialization finishes.
type InitStatus int

const (
	// InitSuccess means the engine is ready.
	InitSuccess InitStatus = iota
	// InitError means the engine could not be initialized.
	InitError
)

// String returns the string representation of the status.
func (s InitStatus) String() string {
	switch s {
	case InitSuccess:
		return "success"
	case InitError:
		return "error"
	default:
		return "unknown"
	}
}

// InitFunc is called exactly once by an engine when initialization
// completes. It may run on any goroutine.
type InitFunc func(status InitStatus)

// EngineFactory constructs an engine. Initialization continues
// asynchronously and is reported through onInit.
type EngineFactory func(ctx context.Context, onInit InitFunc) (Engine, error)

// QueueMode controls how Speak interacts with queued utterances.
type QueueMode int

const (
	// QueueAdd appends the utterance to the queue.
	QueueAdd QueueMode = iota
	// QueueFlush drops queued utterances and interrupts the current one.
	QueueFlush
)

// String returns the string representation of the mode.
func (m QueueMode) String() string {
	switch m {
	case QueueAdd:
		return "add"
	case QueueFlush:
		return "flush"
	default:
		return "unknown"
	}
}

// Params holds per-utterance parameters.
type Params struct {
	UtteranceID string
}

// LanguageAvailability describes engine support for a language.
type LanguageAvailability int

const (
	// LanguageNotSupported means the language is not supported at all.
	LanguageNotSupported LanguageAvailability = iota
	// LanguageMissingData means the language is known but its data is not installed.
	LanguageMissingData
	// LanguageAvailable means the language is available, but not the region.
	LanguageAvailable
	// LanguageCountryAvailable means language and region are available.
	LanguageCountryAvailable
	// LanguageCountryVariantAvailable means language, region and variant are available.
	LanguageCountryVariantAvailable
)

// Supported reports whether speech can be produced for the language.
func (a LanguageAvailability) Supported() bool {
	return a >= LanguageAvailable
}

// String returns the string representation of the availability.
func (a LanguageAvailability) String() string {
	switch a {
	case LanguageNotSupported:
		return "not supported"
	case LanguageMissingData:
		return "missing data"
	case LanguageAvailable:
		return "available"
	case LanguageCountryAvailable:
		return "country available"
	case LanguageCountryVariantAvailable:
		return "country variant available"
	default:
		return "unknown"
	}
}
