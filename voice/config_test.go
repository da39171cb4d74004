package voice

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// TestDefaultConfig tests that default configuration is valid.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	if cfg.Engine != EngineMock {
		t.Errorf("Default engine should be mock, got %s", cfg.Engine)
	}

	if cfg.Muted {
		t.Error("Voice instructions should not be muted by default")
	}

	if cfg.Language != "en" {
		t.Errorf("Default language should be en, got %s", cfg.Language)
	}
}

// TestConfigValidation tests configuration validation.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "engine name is normalized",
			modify: func(c *Config) {
				c.Engine = " MOCK "
			},
			wantErr: false,
		},
		{
			name: "invalid engine",
			modify: func(c *Config) {
				c.Engine = "invalid"
			},
			wantErr: true,
			errMsg:  "invalid engine",
		},
		{
			name: "invalid fallback",
			modify: func(c *Config) {
				c.Fallback = "invalid"
			},
			wantErr: true,
			errMsg:  "invalid fallback engine",
		},
		{
			name: "fallback same as engine",
			modify: func(c *Config) {
				c.Fallback = EngineMock
			},
			wantErr: true,
			errMsg:  "must differ",
		},
		{
			name: "max failures too low",
			modify: func(c *Config) {
				c.MaxFailures = 0
			},
			wantErr: true,
			errMsg:  "max_failures must be between",
		},
		{
			name: "unparseable language",
			modify: func(c *Config) {
				c.Language = "not a language"
			},
			wantErr: true,
			errMsg:  "language",
		},
		{
			name: "empty language",
			modify: func(c *Config) {
				c.Language = ""
			},
			wantErr: false,
		},
		{
			name: "mock words per minute too high",
			modify: func(c *Config) {
				c.Mock.WordsPerMinute = 1000
			},
			wantErr: true,
			errMsg:  "words_per_minute must be between",
		},
		{
			name: "negative init delay",
			modify: func(c *Config) {
				c.Mock.InitDelay = -time.Second
			},
			wantErr: true,
			errMsg:  "init_delay cannot be negative",
		},
		{
			name: "piper settings ignored unless selected",
			modify: func(c *Config) {
				c.Piper.SampleRate = 12345
			},
			wantErr: false,
		},
		{
			name: "invalid piper sample rate",
			modify: func(c *Config) {
				c.Engine = EnginePiper
				c.Piper.SampleRate = 12345
			},
			wantErr: true,
			errMsg:  "invalid sample rate",
		},
		{
			name: "piper volume too high",
			modify: func(c *Config) {
				c.Engine = EnginePiper
				c.Piper.Volume = 2.0
			},
			wantErr: true,
			errMsg:  "volume must be between",
		},
		{
			name: "piper timeout too short",
			modify: func(c *Config) {
				c.Engine = EnginePiper
				c.Piper.Timeout = 100 * time.Millisecond
			},
			wantErr: true,
			errMsg:  "timeout must be at least",
		},
		{
			name: "piper as fallback is validated",
			modify: func(c *Config) {
				c.Fallback = EnginePiper
				c.Piper.Binary = ""
			},
			wantErr: true,
			errMsg:  "binary path cannot be empty",
		},
		{
			name: "piper voice with bad language",
			modify: func(c *Config) {
				c.Engine = EnginePiper
				c.Piper.Voices = map[string]string{"not a language": "/voices/x.onnx"}
			},
			wantErr: true,
			errMsg:  "voice language",
		},
		{
			name: "simulate rate must be positive",
			modify: func(c *Config) {
				c.Simulate.StepsPerSecond = 0
			},
			wantErr: true,
			errMsg:  "steps_per_second must be positive",
		},
		{
			name: "simulate burst too small",
			modify: func(c *Config) {
				c.Simulate.Burst = 0
			},
			wantErr: true,
			errMsg:  "burst must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error should wrap ErrInvalidConfig, got %v", err)
			}
			if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

// TestLoadConfigFromViper tests loading configuration from a YAML document.
func TestLoadConfigFromViper(t *testing.T) {
	const doc = `
voice:
  language: de-AT
  muted: true
  engine: piper
  fallback: mock
  max_failures: 5
  piper:
    binary: /usr/local/bin/piper
    voices:
      de: /voices/de_DE-thorsten-medium.onnx
    sample_rate: 16000
    speaker_id: 2
    length_scale: 1.2
    volume: 0.8
    timeout: 10s
    buffer_size: 100ms
  mock:
    init_delay: 0s
    words_per_minute: 200
    languages: [de]
  simulate:
    steps_per_second: 4
    burst: 2
`
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(doc)); err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	cfg, err := LoadConfigFromViper(v)
	if err != nil {
		t.Fatalf("LoadConfigFromViper failed: %v", err)
	}

	if cfg.Language != "de-AT" {
		t.Errorf("Expected language de-AT, got %s", cfg.Language)
	}
	if !cfg.Muted {
		t.Error("Expected muted")
	}
	if cfg.Engine != EnginePiper || cfg.Fallback != EngineMock {
		t.Errorf("Expected piper with mock fallback, got %s/%s", cfg.Engine, cfg.Fallback)
	}
	if cfg.MaxFailures != 5 {
		t.Errorf("Expected max failures 5, got %d", cfg.MaxFailures)
	}

	if cfg.Piper.Binary != "/usr/local/bin/piper" {
		t.Errorf("Expected piper binary, got %s", cfg.Piper.Binary)
	}
	if got := cfg.Piper.Voices["de"]; got != "/voices/de_DE-thorsten-medium.onnx" {
		t.Errorf("Expected de voice, got %q", got)
	}
	if cfg.Piper.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", cfg.Piper.SampleRate)
	}
	if cfg.Piper.SpeakerID != 2 {
		t.Errorf("Expected speaker 2, got %d", cfg.Piper.SpeakerID)
	}
	if cfg.Piper.Timeout != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", cfg.Piper.Timeout)
	}
	if cfg.Piper.BufferSize != 100*time.Millisecond {
		t.Errorf("Expected buffer 100ms, got %v", cfg.Piper.BufferSize)
	}

	if cfg.Mock.WordsPerMinute != 200 {
		t.Errorf("Expected 200 wpm, got %d", cfg.Mock.WordsPerMinute)
	}
	if len(cfg.Mock.Languages) != 1 || cfg.Mock.Languages[0] != "de" {
		t.Errorf("Expected mock languages [de], got %v", cfg.Mock.Languages)
	}

	if cfg.Simulate.StepsPerSecond != 4 || cfg.Simulate.Burst != 2 {
		t.Errorf("Expected simulate 4/2, got %v/%d", cfg.Simulate.StepsPerSecond, cfg.Simulate.Burst)
	}
}

// TestLoadConfigDefaults tests that an empty Viper yields the defaults.
func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadConfigFromViper(v)
	if err != nil {
		t.Fatalf("LoadConfigFromViper failed: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Engine != defaults.Engine {
		t.Errorf("Expected engine %s, got %s", defaults.Engine, cfg.Engine)
	}
	if cfg.Piper.Timeout != defaults.Piper.Timeout {
		t.Errorf("Expected timeout %v, got %v", defaults.Piper.Timeout, cfg.Piper.Timeout)
	}
	if cfg.Mock.InitDelay != defaults.Mock.InitDelay {
		t.Errorf("Expected init delay %v, got %v", defaults.Mock.InitDelay, cfg.Mock.InitDelay)
	}
	if len(cfg.Mock.Languages) != len(defaults.Mock.Languages) {
		t.Errorf("Expected mock languages %v, got %v", defaults.Mock.Languages, cfg.Mock.Languages)
	}
}

// TestLoadConfigInvalid tests that invalid values are reported.
func TestLoadConfigInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("voice.engine", "espeak")

	_, err := LoadConfigFromViper(v)
	if err == nil {
		t.Fatal("Expected error for unknown engine")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid voice configuration") {
		t.Errorf("Unexpected error message: %v", err)
	}
}
