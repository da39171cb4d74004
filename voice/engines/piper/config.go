// Package piper provides a speech engine backed by the Piper TTS binary.
package piper

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/text/language"

	"github.com/dgnsrekt/navvoice/voice"
)

// Config holds configuration for the Piper engine.
type Config struct {
	BinaryPath  string
	Voices      map[language.Tag]string // language -> voice model path
	SampleRate  int
	SpeakerID   int
	LengthScale float64
	Volume      float64
	Timeout     time.Duration
	BufferSize  time.Duration
}

// FromVoiceConfig converts voice configuration to a Piper config,
// expanding home directories in paths.
func FromVoiceConfig(pc voice.PiperConfig) (Config, error) {
	binary, err := homedir.Expand(pc.Binary)
	if err != nil {
		return Config{}, fmt.Errorf("piper binary %q: %w", pc.Binary, err)
	}

	voices := make(map[language.Tag]string, len(pc.Voices))
	for lang, model := range pc.Voices {
		tag, err := language.Parse(lang)
		if err != nil {
			return Config{}, fmt.Errorf("%w: voice language %q: %v", voice.ErrInvalidConfig, lang, err)
		}
		path, err := homedir.Expand(model)
		if err != nil {
			return Config{}, fmt.Errorf("voice model %q: %w", model, err)
		}
		voices[tag] = path
	}

	return Config{
		BinaryPath:  binary,
		Voices:      voices,
		SampleRate:  pc.SampleRate,
		SpeakerID:   pc.SpeakerID,
		LengthScale: pc.LengthScale,
		Volume:      pc.Volume,
		Timeout:     pc.Timeout,
		BufferSize:  pc.BufferSize,
	}, nil
}

// tags returns the configured voice languages.
func (c Config) tags() []language.Tag {
	tags := make([]language.Tag, 0, len(c.Voices))
	for tag := range c.Voices {
		tags = append(tags, tag)
	}
	return tags
}

// findBinary resolves the Piper binary on PATH or as a file path.
func findBinary(path string) (string, error) {
	if resolved, err := exec.LookPath(path); err == nil {
		return resolved, nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("piper binary not found: %w", err)
	}
	return path, nil
}

func modelExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
