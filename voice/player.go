package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
)

// SpeechPlayer plays voice instructions through a speech engine.
//
// The engine is initialized asynchronously. Until initialization has
// resolved, and forever after it fails, Speak is a silent no-op. Progress
// callbacks from the engine are relayed to the registered listener on the
// engine's goroutine.
type SpeechPlayer struct {
	language string
	logger   *log.Logger
	state    *StateMachine

	// mu guards engine. The engine is set once the factory returns and
	// cleared when it is released.
	mu     sync.Mutex
	engine Engine

	// initReported is closed by the engine's init callback, ready once
	// languageSupported has been resolved.
	initOnce          sync.Once
	initStatus        InitStatus
	initReported      chan struct{}
	ready             chan struct{}
	languageSupported bool

	// closed is closed by Shutdown.
	closed chan struct{}

	muted    atomic.Bool
	listener atomic.Pointer[listenerHandle]

	shutdownOnce sync.Once
}

// Option configures a SpeechPlayer.
type Option func(*SpeechPlayer)

// WithLogger sets the logger used by the player.
func WithLogger(logger *log.Logger) Option {
	return func(p *SpeechPlayer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMuted sets the initial mute state.
func WithMuted(muted bool) Option {
	return func(p *SpeechPlayer) {
		p.muted.Store(muted)
	}
}

// NewSpeechPlayer creates a player for the given language and starts
// initializing its engine. Initialization failures never surface here: they
// are logged and leave the player permanently unable to speak.
func NewSpeechPlayer(ctx context.Context, lang string, factory EngineFactory, opts ...Option) *SpeechPlayer {
	p := &SpeechPlayer{
		language:     lang,
		logger:       log.Default(),
		state:        NewStateMachine(),
		initReported: make(chan struct{}),
		ready:        make(chan struct{}),
		closed:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.state.OnEnter(StateUnusable, func() {
		p.logger.Warn("Voice instructions disabled", "language", p.language)
	})
	p.state.Transition(StateInitializing)

	if factory == nil {
		p.logger.Warn("There was an error initializing the speech engine", "err", ErrEngineUnavailable)
		p.resolve(false)
		return p
	}

	engine, err := factory(ctx, p.onInit)
	if err != nil || engine == nil {
		if err == nil {
			err = ErrEngineUnavailable
		}
		p.logger.Warn("There was an error initializing the speech engine", "err", err)
		p.resolve(false)
		return p
	}

	engine.SetProgressListener(progressRelay{player: p})

	p.mu.Lock()
	p.engine = engine
	p.mu.Unlock()

	go p.awaitInit(ctx)

	return p
}

// onInit records the engine's init status. Only the first report counts.
func (p *SpeechPlayer) onInit(status InitStatus) {
	p.initOnce.Do(func() {
		p.initStatus = status
		close(p.initReported)
	})
}

func (p *SpeechPlayer) awaitInit(ctx context.Context) {
	select {
	case <-p.initReported:
		p.completeInit(p.initStatus)
	case <-ctx.Done():
		p.logger.Warn("Speech engine initialization abandoned", "err", context.Cause(ctx))
		p.completeInit(InitError)
	case <-p.closed:
		p.completeInit(InitError)
	}
}

func (p *SpeechPlayer) completeInit(status InitStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine == nil {
		// Shut down before initialization finished.
		p.resolve(false)
		return
	}

	if status == InitError {
		p.logger.Warn("There was an error initializing the speech engine", "err", ErrEngineInitFailed)
		p.releaseLocked()
		p.resolve(false)
		return
	}
	if p.language == "" {
		p.logger.Warn("There was an error initializing the speech engine", "err", ErrMissingLanguage)
		p.releaseLocked()
		p.resolve(false)
		return
	}

	tag, err := language.Parse(p.language)
	if err != nil {
		p.logger.Warn("The specified language could not be parsed", "language", p.language, "err", err)
		p.releaseLocked()
		p.resolve(false)
		return
	}

	availability := p.engine.IsLanguageAvailable(tag)
	if !availability.Supported() {
		p.logger.Warn("The specified language is not supported by the speech engine",
			"language", tag, "availability", availability)
		p.releaseLocked()
		p.resolve(false)
		return
	}

	if err := p.engine.SetLanguage(tag); err != nil {
		p.logger.Warn("The speech engine rejected the language", "language", tag, "err", err)
		p.releaseLocked()
		p.resolve(false)
		return
	}

	p.logger.Debug("Speech engine ready", "language", tag, "availability", availability)
	p.resolve(true)
}

// resolve settles languageSupported exactly once.
func (p *SpeechPlayer) resolve(supported bool) {
	select {
	case <-p.ready:
		return
	default:
	}

	p.languageSupported = supported
	if supported {
		p.state.Transition(StateReady)
	} else {
		p.state.Transition(StateUnusable)
	}
	close(p.ready)
}

// releaseLocked drops an engine that failed to initialize. p.mu must be held.
func (p *SpeechPlayer) releaseLocked() {
	if p.engine == nil {
		return
	}
	if err := p.engine.Shutdown(); err != nil {
		p.logger.Debug("Failed to release speech engine", "err", err)
	}
	p.engine = nil
}

// Speak queues text for playback behind any utterance already queued. It
// does nothing when the language is not supported, the player is muted or
// the text is empty. After Shutdown it returns ErrPlayerShutdown.
func (p *SpeechPlayer) Speak(text string) error {
	if p.state.Current() == StateShutdown {
		return ErrPlayerShutdown
	}
	if !p.canPlay(text) {
		p.logger.Debug("Skipping instruction", "state", p.state.Current(), "muted", p.IsMuted())
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine == nil {
		return ErrPlayerShutdown
	}

	params := Params{UtteranceID: DefaultUtteranceID}
	if err := p.engine.Speak(text, QueueAdd, params); err != nil {
		return NewPlayerError(fmt.Errorf("%w: %w", ErrSpeakFailed, err), "player", "speak")
	}
	return nil
}

func (p *SpeechPlayer) canPlay(text string) bool {
	return p.resolvedSupported() && !p.IsMuted() && strings.TrimSpace(text) != ""
}

func (p *SpeechPlayer) resolvedSupported() bool {
	select {
	case <-p.ready:
		return p.languageSupported
	default:
		return false
	}
}

// IsMuted reports whether the player is muted.
func (p *SpeechPlayer) IsMuted() bool {
	return p.muted.Load()
}

// SetMuted sets the mute state. Muting stops the current utterance.
func (p *SpeechPlayer) SetMuted(muted bool) {
	p.muted.Store(muted)
	if muted {
		p.stopSpeaking()
	}
}

// OnOffRoute stops the current utterance. The mute state is unchanged.
func (p *SpeechPlayer) OnOffRoute() {
	p.stopSpeaking()
}

// stopSpeaking interrupts the engine only if it is speaking.
func (p *SpeechPlayer) stopSpeaking() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine == nil || !p.engine.IsSpeaking() {
		return
	}
	if err := p.engine.Stop(); err != nil {
		p.logger.Warn("Failed to stop speech engine", "err", err)
	}
}

// Shutdown stops playback and releases the engine. It is safe to call on a
// player whose engine failed to initialize, and more than once; only the
// first call reports the engine's shutdown error.
func (p *SpeechPlayer) Shutdown() error {
	var err error
	p.shutdownOnce.Do(func() {
		p.state.Transition(StateShutdown)
		close(p.closed)

		p.mu.Lock()
		engine := p.engine
		p.engine = nil
		p.mu.Unlock()

		if engine == nil {
			return
		}
		if stopErr := engine.Stop(); stopErr != nil {
			p.logger.Debug("Failed to stop speech engine", "err", stopErr)
		}
		if shutdownErr := engine.Shutdown(); shutdownErr != nil {
			err = NewPlayerError(shutdownErr, "player", "shutdown")
		}
	})
	return err
}

// SetListener registers listener, replacing any previous one. A nil
// listener clears the slot.
func (p *SpeechPlayer) SetListener(listener InstructionListener) {
	if listener == nil {
		p.listener.Store(nil)
		return
	}
	p.listener.Store(&listenerHandle{listener: listener})
}

// CanSpeak reports whether the player can produce audio, ignoring mute.
func (p *SpeechPlayer) CanSpeak() bool {
	return p.state.Current() != StateShutdown && p.resolvedSupported()
}

// Ready is closed once engine initialization has resolved, successfully or not.
func (p *SpeechPlayer) Ready() <-chan struct{} {
	return p.ready
}

// State returns the lifecycle state.
func (p *SpeechPlayer) State() StateType {
	return p.state.Current()
}

func (p *SpeechPlayer) currentListener() InstructionListener {
	if h := p.listener.Load(); h != nil {
		return h.listener
	}
	return nil
}

type listenerHandle struct {
	listener InstructionListener
}

// progressRelay forwards engine progress to the player's listener.
type progressRelay struct {
	player *SpeechPlayer
}

func (r progressRelay) OnStart(string) {
	if l := r.player.currentListener(); l != nil {
		l.OnStart()
	}
}

func (r progressRelay) OnDone(string) {
	if l := r.player.currentListener(); l != nil {
		l.OnDone()
	}
}

func (r progressRelay) OnError(utteranceID string, err error) {
	r.player.logger.Debug("Utterance failed", "id", utteranceID, "err", err)
	if l := r.player.currentListener(); l != nil {
		l.OnError(false)
	}
}

func (r progressRelay) OnStop(_ string, interrupted bool) {
	if !interrupted {
		return
	}
	if l := r.player.currentListener(); l != nil {
		l.OnError(true)
	}
}
