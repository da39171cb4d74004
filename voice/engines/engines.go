// Package engines selects speech engines by name and assembles players.
package engines

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/navvoice/voice"
	"github.com/dgnsrekt/navvoice/voice/engines/mock"
	"github.com/dgnsrekt/navvoice/voice/engines/piper"
)

// NewFactory returns the engine factory registered under name.
func NewFactory(name string, cfg voice.Config, logger *log.Logger) (voice.EngineFactory, error) {
	switch name {
	case voice.EngineMock:
		return mock.FromConfig(cfg.Mock, logger).Factory(), nil
	case voice.EnginePiper:
		pc, err := piper.FromVoiceConfig(cfg.Piper)
		if err != nil {
			return nil, err
		}
		return piper.Factory(pc), nil
	default:
		return nil, fmt.Errorf("%w: %q", voice.ErrUnknownEngine, name)
	}
}

// Players is an assembled instruction player and the speech players
// behind it.
type Players struct {
	voice.InstructionPlayer
	Speech []*voice.SpeechPlayer
}

// NewPlayers builds a speech player for the configured engine, wrapped in a
// FallbackPlayer when a fallback engine is configured.
func NewPlayers(ctx context.Context, cfg voice.Config, logger *log.Logger) (*Players, error) {
	if logger == nil {
		logger = log.Default()
	}

	primary, err := newSpeechPlayer(ctx, cfg.Engine, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Fallback == "" {
		return &Players{InstructionPlayer: primary, Speech: []*voice.SpeechPlayer{primary}}, nil
	}

	secondary, err := newSpeechPlayer(ctx, cfg.Fallback, cfg, logger)
	if err != nil {
		_ = primary.Shutdown()
		return nil, err
	}

	fallback := voice.NewFallbackPlayer(primary, secondary, cfg.MaxFailures)
	fallback.SetLogger(logger.WithPrefix("fallback"))
	return &Players{
		InstructionPlayer: fallback,
		Speech:            []*voice.SpeechPlayer{primary, secondary},
	}, nil
}

func newSpeechPlayer(ctx context.Context, name string, cfg voice.Config, logger *log.Logger) (*voice.SpeechPlayer, error) {
	factory, err := NewFactory(name, cfg, logger.WithPrefix(name))
	if err != nil {
		return nil, err
	}
	return voice.NewSpeechPlayer(ctx, cfg.Language, factory,
		voice.WithLogger(logger.WithPrefix(name)),
		voice.WithMuted(cfg.Muted),
	), nil
}

// Status describes which player instructions are spoken through.
func (p *Players) Status() string {
	if fb, ok := p.InstructionPlayer.(*voice.FallbackPlayer); ok {
		return fb.Status()
	}
	if !p.CanSpeak() {
		return "No player can speak"
	}
	return "Using primary player"
}

// WaitReady blocks until every speech player has finished initializing.
func (p *Players) WaitReady(ctx context.Context) error {
	for _, sp := range p.Speech {
		select {
		case <-sp.Ready():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
