// Package mock provides an in-process speech engine for tests and dry runs.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/dgnsrekt/navvoice/voice"
)

// Call records one Speak invocation.
type Call struct {
	Text        string
	Mode        voice.QueueMode
	UtteranceID string
}

type utterance struct {
	id        string
	text      string
	duration  time.Duration
	err       error
	interrupt chan struct{}
}

// Engine implements voice.Engine without producing audio. Utterances are
// played one at a time by a worker goroutine that sleeps for the estimated
// speaking duration and reports progress to the registered listener.
type Engine struct {
	// Configuration
	languages      []language.Tag
	initStatus     voice.InitStatus
	initDelay      time.Duration
	manualInit     bool
	wordsPerMinute int
	fixedDuration  time.Duration
	logger         *log.Logger

	mu        sync.Mutex
	onInit    voice.InitFunc
	listener  voice.ProgressListener
	current   language.Tag
	queue     []utterance
	speaking  bool
	interrupt chan struct{}
	closed    bool
	started   bool

	// Control for testing
	speakErr     error
	utteranceErr error

	// Recorded activity
	calls         []Call
	stopCount     int
	shutdownCount int

	wake chan struct{}
	done chan struct{}
}

// Option configures a mock engine.
type Option func(*Engine)

// WithLanguages sets the languages the engine reports as available.
// Tags that fail to parse are ignored.
func WithLanguages(langs ...string) Option {
	return func(e *Engine) {
		e.languages = e.languages[:0]
		for _, l := range langs {
			if tag, err := language.Parse(l); err == nil {
				e.languages = append(e.languages, tag)
			}
		}
	}
}

// WithInitStatus sets the status reported when initialization completes.
func WithInitStatus(status voice.InitStatus) Option {
	return func(e *Engine) { e.initStatus = status }
}

// WithInitDelay sets how long initialization takes.
func WithInitDelay(d time.Duration) Option {
	return func(e *Engine) { e.initDelay = d }
}

// WithManualInit defers initialization until Init is called.
func WithManualInit() Option {
	return func(e *Engine) { e.manualInit = true }
}

// WithWordsPerMinute sets the simulated speaking rate.
func WithWordsPerMinute(wpm int) Option {
	return func(e *Engine) {
		if wpm > 0 {
			e.wordsPerMinute = wpm
		}
	}
}

// WithUtteranceDuration makes every utterance last exactly d.
func WithUtteranceDuration(d time.Duration) Option {
	return func(e *Engine) { e.fixedDuration = d }
}

// WithLogger sets the logger used by the engine.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a new mock speech engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		languages:      []language.Tag{language.English},
		initStatus:     voice.InitSuccess,
		wordsPerMinute: 150,
		logger:         log.Default(),
		wake:           make(chan struct{}, 1),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig creates a mock engine from configuration.
func FromConfig(cfg voice.MockConfig, logger *log.Logger) *Engine {
	status := voice.InitSuccess
	if cfg.FailInit {
		status = voice.InitError
	}
	return New(
		WithLanguages(cfg.Languages...),
		WithInitStatus(status),
		WithInitDelay(cfg.InitDelay),
		WithWordsPerMinute(cfg.WordsPerMinute),
		WithLogger(logger),
	)
}

// Factory returns a voice.EngineFactory that hands out this engine. The
// factory may only be used once.
func (e *Engine) Factory() voice.EngineFactory {
	return func(ctx context.Context, onInit voice.InitFunc) (voice.Engine, error) {
		e.mu.Lock()
		if e.started {
			e.mu.Unlock()
			return nil, fmt.Errorf("mock engine already started")
		}
		e.started = true
		e.onInit = onInit
		manual := e.manualInit
		e.mu.Unlock()

		go e.run()
		if !manual {
			go e.initialize(ctx)
		}
		return e, nil
	}
}

func (e *Engine) initialize(ctx context.Context) {
	if e.initDelay > 0 {
		timer := time.NewTimer(e.initDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			e.Init(voice.InitError)
			return
		case <-e.done:
			return
		}
	}
	e.Init(e.initStatus)
}

// Init reports status to the init callback. Only meaningful once the
// factory has been called; later calls after the first are forwarded too,
// so callers relying on single delivery must not call it twice.
func (e *Engine) Init(status voice.InitStatus) {
	e.mu.Lock()
	onInit := e.onInit
	e.mu.Unlock()

	if onInit != nil {
		e.logger.Debug("Mock engine initialized", "status", status)
		onInit(status)
	}
}

// Speak queues text for simulated playback.
func (e *Engine) Speak(text string, mode voice.QueueMode, params voice.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return voice.ErrEngineShutdown
	}

	e.calls = append(e.calls, Call{Text: text, Mode: mode, UtteranceID: params.UtteranceID})

	if e.speakErr != nil {
		return e.speakErr
	}

	if mode == voice.QueueFlush {
		e.stopLocked()
	}

	e.queue = append(e.queue, utterance{
		id:       params.UtteranceID,
		text:     text,
		duration: e.estimateDuration(text),
		err:      e.utteranceErr,
	})

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return nil
}

// IsSpeaking reports whether an utterance is in progress or queued.
func (e *Engine) IsSpeaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaking || len(e.queue) > 0
}

// Stop interrupts the current utterance and drops the queue.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopCount++
	e.stopLocked()
	return nil
}

func (e *Engine) stopLocked() {
	e.queue = nil
	if e.interrupt != nil {
		close(e.interrupt)
		e.interrupt = nil
	}
	e.speaking = false
}

// Shutdown stops the worker. Further Speak calls fail.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.shutdownCount++
	if e.closed {
		return nil
	}
	e.stopLocked()
	e.closed = true
	close(e.done)
	return nil
}

// SetLanguage selects a language. It must be available.
func (e *Engine) SetLanguage(tag language.Tag) error {
	matched, availability := voice.MatchLanguage(e.languages, tag)
	if !availability.Supported() {
		return fmt.Errorf("%w: %s", voice.ErrLanguageUnsupported, tag)
	}

	e.mu.Lock()
	e.current = matched
	e.mu.Unlock()
	return nil
}

// IsLanguageAvailable reports support for tag.
func (e *Engine) IsLanguageAvailable(tag language.Tag) voice.LanguageAvailability {
	_, availability := voice.MatchLanguage(e.languages, tag)
	return availability
}

// SetProgressListener registers the progress listener.
func (e *Engine) SetProgressListener(listener voice.ProgressListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = listener
}

func (e *Engine) run() {
	for {
		u, ok := e.next()
		if !ok {
			return
		}
		e.play(u)
	}
}

// next blocks until an utterance is queued or the engine shuts down.
func (e *Engine) next() (utterance, bool) {
	for {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return utterance{}, false
		}
		if len(e.queue) > 0 {
			u := e.queue[0]
			e.queue = e.queue[1:]
			e.speaking = true
			e.interrupt = make(chan struct{})
			u.interrupt = e.interrupt
			e.mu.Unlock()
			return u, true
		}
		e.mu.Unlock()

		select {
		case <-e.wake:
		case <-e.done:
		}
	}
}

func (e *Engine) play(u utterance) {
	listener := e.progressListener()
	if listener != nil {
		listener.OnStart(u.id)
	}

	timer := time.NewTimer(u.duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		e.finish(u)
		if listener == nil {
			return
		}
		if u.err != nil {
			listener.OnError(u.id, u.err)
			return
		}
		listener.OnDone(u.id)
	case <-u.interrupt:
		if listener != nil {
			listener.OnStop(u.id, true)
		}
	}
}

// finish clears the speaking state unless Stop already did.
func (e *Engine) finish(u utterance) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.interrupt == u.interrupt {
		e.interrupt = nil
		e.speaking = false
	}
}

func (e *Engine) progressListener() voice.ProgressListener {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listener
}

// Test control methods

// SetSpeakFailure makes Speak return err. A nil err clears the failure.
func (e *Engine) SetSpeakFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speakErr = err
}

// SetUtteranceFailure makes subsequently queued utterances end with err
// instead of completing. A nil err clears the failure.
func (e *Engine) SetUtteranceFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.utteranceErr = err
}

// Calls returns the recorded Speak invocations.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

// StopCount returns the number of Stop calls.
func (e *Engine) StopCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopCount
}

// ShutdownCount returns the number of Shutdown calls.
func (e *Engine) ShutdownCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdownCount
}

// IsShutdown reports whether the engine has been shut down.
func (e *Engine) IsShutdown() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Language returns the language selected with SetLanguage.
func (e *Engine) Language() language.Tag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// estimateDuration estimates speaking duration for text.
func (e *Engine) estimateDuration(text string) time.Duration {
	if e.fixedDuration > 0 {
		return e.fixedDuration
	}
	words := len(text) / 5 // Rough estimate: 5 chars per word
	if words < 1 {
		words = 1
	}
	seconds := float64(words) * 60.0 / float64(e.wordsPerMinute)
	return time.Duration(seconds * float64(time.Second))
}
