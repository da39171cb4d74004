package piper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"

	"github.com/dgnsrekt/navvoice/voice"
	"github.com/dgnsrekt/navvoice/voice/audio"
)

// Sink plays PCM audio.
type Sink interface {
	// Ready is closed once the sink can play.
	Ready() <-chan struct{}

	// Play blocks until pcm has been played or ctx is done.
	Play(ctx context.Context, pcm []byte) error
}

type utterance struct {
	id   string
	text string
}

// Engine implements voice.Engine with Piper synthesis and local playback.
// Utterances are synthesized and played one at a time in queue order.
type Engine struct {
	config      Config
	synthesizer Synthesizer
	sink        Sink
	readyWait   time.Duration
	needsBinary bool

	mu       sync.Mutex
	listener voice.ProgressListener
	model    string
	queue    []utterance
	speaking bool
	cancel   context.CancelFunc
	closed   bool

	wake chan struct{}
	done chan struct{}
}

// Option configures a Piper engine.
type Option func(*Engine)

// WithSynthesizer replaces the Piper subprocess synthesizer.
func WithSynthesizer(s Synthesizer) Option {
	return func(e *Engine) { e.synthesizer = s }
}

// WithSink replaces the system audio output.
func WithSink(s Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithReadyTimeout bounds how long initialization waits for the sink.
func WithReadyTimeout(d time.Duration) Option {
	return func(e *Engine) { e.readyWait = d }
}

// Factory returns a voice.EngineFactory creating Piper engines.
func Factory(cfg Config, opts ...Option) voice.EngineFactory {
	return func(ctx context.Context, onInit voice.InitFunc) (voice.Engine, error) {
		e := &Engine{
			config:    cfg,
			readyWait: 5 * time.Second,
			wake:      make(chan struct{}, 1),
			done:      make(chan struct{}),
		}
		for _, opt := range opts {
			opt(e)
		}

		if e.synthesizer == nil {
			e.synthesizer = NewProcessSynthesizer(cfg)
			e.needsBinary = true
		}
		if e.sink == nil {
			out, err := audio.Open(audio.Options{
				SampleRate: cfg.SampleRate,
				BufferSize: cfg.BufferSize,
				Volume:     cfg.Volume,
			})
			if err != nil {
				return nil, err
			}
			e.sink = out
		}

		go e.run()
		go e.initialize(ctx, onInit)

		return e, nil
	}
}

// initialize waits for the audio device and checks the Piper install.
func (e *Engine) initialize(ctx context.Context, onInit voice.InitFunc) {
	timer := time.NewTimer(e.readyWait)
	defer timer.Stop()

	select {
	case <-e.sink.Ready():
	case <-timer.C:
		log.Warn("Audio device not ready", "timeout", e.readyWait)
		onInit(voice.InitError)
		return
	case <-ctx.Done():
		onInit(voice.InitError)
		return
	case <-e.done:
		onInit(voice.InitError)
		return
	}

	// Only the subprocess synthesizer needs the binary.
	if e.needsBinary {
		if _, err := findBinary(e.config.BinaryPath); err != nil {
			log.Warn("Piper is not installed", "binary", e.config.BinaryPath, "err", err)
			onInit(voice.InitError)
			return
		}
	}

	if len(e.config.Voices) == 0 {
		log.Warn("No Piper voices configured")
		onInit(voice.InitError)
		return
	}

	log.Debug("Piper engine initialized", "voices", len(e.config.Voices))
	onInit(voice.InitSuccess)
}

// Speak queues text for synthesis and playback.
func (e *Engine) Speak(text string, mode voice.QueueMode, params voice.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return voice.ErrEngineShutdown
	}
	if e.model == "" {
		return fmt.Errorf("%w: no language selected", voice.ErrEngineUnavailable)
	}

	if mode == voice.QueueFlush {
		e.stopLocked()
	}
	e.queue = append(e.queue, utterance{id: params.UtteranceID, text: text})

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return nil
}

// IsSpeaking reports whether an utterance is queued, being synthesized or
// being played.
func (e *Engine) IsSpeaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaking || len(e.queue) > 0
}

// Stop cancels the current utterance and drops the queue.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

func (e *Engine) stopLocked() {
	e.queue = nil
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.speaking = false
}

// Shutdown stops the worker. Further Speak calls fail.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.stopLocked()
	e.closed = true
	close(e.done)
	return nil
}

// SetLanguage selects the voice model for tag.
func (e *Engine) SetLanguage(tag language.Tag) error {
	matched, availability := e.match(tag)
	if !availability.Supported() {
		return fmt.Errorf("%w: %s (%s)", voice.ErrLanguageUnsupported, tag, availability)
	}

	e.mu.Lock()
	e.model = e.config.Voices[matched]
	e.mu.Unlock()

	log.Debug("Piper voice selected", "language", tag, "model", e.config.Voices[matched])
	return nil
}

// IsLanguageAvailable reports support for tag. A configured voice whose
// model file is missing reports LanguageMissingData.
func (e *Engine) IsLanguageAvailable(tag language.Tag) voice.LanguageAvailability {
	_, availability := e.match(tag)
	return availability
}

func (e *Engine) match(tag language.Tag) (language.Tag, voice.LanguageAvailability) {
	matched, availability := voice.MatchLanguage(e.config.tags(), tag)
	if availability.Supported() && !modelExists(e.config.Voices[matched]) {
		return matched, voice.LanguageMissingData
	}
	return matched, availability
}

// SetProgressListener registers the progress listener.
func (e *Engine) SetProgressListener(listener voice.ProgressListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = listener
}

func (e *Engine) run() {
	for {
		u, ctx, model, ok := e.next()
		if !ok {
			return
		}
		e.process(ctx, u, model)
	}
}

// next blocks until an utterance is queued or the engine shuts down.
func (e *Engine) next() (utterance, context.Context, string, bool) {
	for {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return utterance{}, nil, "", false
		}
		if len(e.queue) > 0 {
			u := e.queue[0]
			e.queue = e.queue[1:]
			ctx, cancel := context.WithCancel(context.Background())
			e.cancel = cancel
			e.speaking = true
			model := e.model
			e.mu.Unlock()
			return u, ctx, model, true
		}
		e.mu.Unlock()

		select {
		case <-e.wake:
		case <-e.done:
		}
	}
}

func (e *Engine) process(ctx context.Context, u utterance, model string) {
	listener := e.progressListener()
	defer e.finish(ctx)

	started := time.Now()
	pcm, err := e.synthesizer.Synthesize(ctx, model, u.text)
	if ctx.Err() != nil {
		e.notifyStop(listener, u.id)
		return
	}
	if err != nil {
		log.Warn("Piper synthesis failed", "id", u.id, "err", err)
		if listener != nil {
			listener.OnError(u.id, err)
		}
		return
	}

	log.Debug("Synthesized utterance",
		"id", u.id,
		"size", humanize.Bytes(uint64(len(pcm))),
		"took", time.Since(started))

	if listener != nil {
		listener.OnStart(u.id)
	}

	err = e.sink.Play(ctx, pcm)
	switch {
	case ctx.Err() != nil:
		e.notifyStop(listener, u.id)
	case err != nil:
		log.Warn("Playback failed", "id", u.id, "err", err)
		if listener != nil {
			listener.OnError(u.id, err)
		}
	default:
		if listener != nil {
			listener.OnDone(u.id)
		}
	}
}

func (e *Engine) notifyStop(listener voice.ProgressListener, id string) {
	if listener != nil {
		listener.OnStop(id, true)
	}
}

// finish releases the utterance context and clears the speaking state
// unless Stop already did.
func (e *Engine) finish(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ctx.Err() == nil && e.cancel != nil {
		e.cancel()
		e.cancel = nil
		e.speaking = false
	}
}

func (e *Engine) progressListener() voice.ProgressListener {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listener
}

var _ voice.Engine = (*Engine)(nil)
