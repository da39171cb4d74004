package voice

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Config contains all voice instruction configuration options.
type Config struct {
	// Language is the BCP 47 tag instructions are spoken in.
	Language string `yaml:"language"`
	// Muted is the initial mute state.
	Muted bool `yaml:"muted"`

	// Engine selects the primary speech engine.
	Engine string `yaml:"engine"`
	// Fallback optionally selects a second engine to fall back to.
	Fallback string `yaml:"fallback"`
	// MaxFailures is the number of consecutive primary failures before
	// switching to the fallback engine.
	MaxFailures int `yaml:"max_failures"`

	// Engine-specific configurations
	Piper PiperConfig `yaml:"piper"`
	Mock  MockConfig  `yaml:"mock"`

	Simulate SimulateConfig `yaml:"simulate"`
}

// PiperConfig contains Piper engine specific settings.
type PiperConfig struct {
	Binary string `yaml:"binary"`
	// Voices maps a language tag to a Piper voice model path.
	Voices      map[string]string `yaml:"voices"`
	SampleRate  int               `yaml:"sample_rate"`
	SpeakerID   int               `yaml:"speaker_id"`
	LengthScale float64           `yaml:"length_scale"`
	Volume      float64           `yaml:"volume"`
	Timeout     time.Duration     `yaml:"timeout"`
	BufferSize  time.Duration     `yaml:"buffer_size"`
}

// MockConfig contains mock engine settings.
type MockConfig struct {
	InitDelay      time.Duration `yaml:"init_delay"`
	WordsPerMinute int           `yaml:"words_per_minute"`
	Languages      []string      `yaml:"languages"`
	FailInit       bool          `yaml:"fail_init"`
}

// SimulateConfig controls route simulation pacing.
type SimulateConfig struct {
	StepsPerSecond float64 `yaml:"steps_per_second"`
	Burst          int     `yaml:"burst"`
}

// Known engine names.
const (
	EngineMock  = "mock"
	EnginePiper = "piper"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Language:    "en",
		Muted:       false,
		Engine:      EngineMock,
		Fallback:    "",
		MaxFailures: 3,
		Piper:       DefaultPiperConfig(),
		Mock:        DefaultMockConfig(),
		Simulate:    DefaultSimulateConfig(),
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	return PiperConfig{
		Binary:      "piper",
		Voices:      map[string]string{},
		SampleRate:  22050,
		SpeakerID:   0,
		LengthScale: 1.0,
		Volume:      1.0,
		Timeout:     30 * time.Second,
		BufferSize:  50 * time.Millisecond,
	}
}

// DefaultMockConfig returns default mock configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		InitDelay:      10 * time.Millisecond,
		WordsPerMinute: 150,
		Languages:      []string{"en", "de", "fr", "es"},
		FailInit:       false,
	}
}

// DefaultSimulateConfig returns default simulation configuration.
func DefaultSimulateConfig() SimulateConfig {
	return SimulateConfig{
		StepsPerSecond: 1.0,
		Burst:          1,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if !validEngine(c.Engine) {
		return fmt.Errorf("%w: invalid engine %q: must be one of %v", ErrInvalidConfig, c.Engine, engineNames)
	}

	c.Fallback = strings.ToLower(strings.TrimSpace(c.Fallback))
	if c.Fallback != "" {
		if !validEngine(c.Fallback) {
			return fmt.Errorf("%w: invalid fallback engine %q: must be one of %v", ErrInvalidConfig, c.Fallback, engineNames)
		}
		if c.Fallback == c.Engine {
			return fmt.Errorf("%w: fallback engine must differ from engine %q", ErrInvalidConfig, c.Engine)
		}
	}

	if c.MaxFailures < 1 || c.MaxFailures > 100 {
		return fmt.Errorf("%w: max_failures must be between 1 and 100, got %d", ErrInvalidConfig, c.MaxFailures)
	}

	// An empty or unknown language is not a configuration error: the
	// player degrades to silence, as it would for an unsupported one.
	if c.Language != "" {
		if _, err := language.Parse(c.Language); err != nil {
			return fmt.Errorf("%w: language %q: %v", ErrInvalidConfig, c.Language, err)
		}
	}

	if c.Engine == EnginePiper || c.Fallback == EnginePiper {
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	}
	if c.Engine == EngineMock || c.Fallback == EngineMock {
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock config: %w", err)
		}
	}
	if err := c.Simulate.Validate(); err != nil {
		return fmt.Errorf("simulate config: %w", err)
	}

	return nil
}

var engineNames = []string{EngineMock, EnginePiper}

func validEngine(name string) bool {
	for _, e := range engineNames {
		if name == e {
			return true
		}
	}
	return false
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("%w: piper binary path cannot be empty", ErrInvalidConfig)
	}

	for lang := range c.Voices {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("%w: voice language %q: %v", ErrInvalidConfig, lang, err)
		}
	}

	validSampleRates := []int{16000, 22050, 24000, 44100, 48000}
	sampleRateValid := false
	for _, sr := range validSampleRates {
		if c.SampleRate == sr {
			sampleRateValid = true
			break
		}
	}
	if !sampleRateValid {
		return fmt.Errorf("%w: invalid sample rate %d: must be one of %v", ErrInvalidConfig, c.SampleRate, validSampleRates)
	}

	if c.LengthScale <= 0 || c.LengthScale > 3.0 {
		return fmt.Errorf("%w: length_scale must be between 0.1 and 3.0, got %f", ErrInvalidConfig, c.LengthScale)
	}

	if c.Volume < 0.0 || c.Volume > 1.0 {
		return fmt.Errorf("%w: volume must be between 0.0 and 1.0, got %f", ErrInvalidConfig, c.Volume)
	}

	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}

	return nil
}

// Validate checks if the mock configuration is valid.
func (c *MockConfig) Validate() error {
	if c.WordsPerMinute < 50 || c.WordsPerMinute > 500 {
		return fmt.Errorf("%w: words_per_minute must be between 50 and 500, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}
	if c.InitDelay < 0 {
		return fmt.Errorf("%w: init_delay cannot be negative, got %v", ErrInvalidConfig, c.InitDelay)
	}
	return nil
}

// Validate checks if the simulation configuration is valid.
func (c *SimulateConfig) Validate() error {
	if c.StepsPerSecond <= 0 {
		return fmt.Errorf("%w: steps_per_second must be positive, got %f", ErrInvalidConfig, c.StepsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("%w: burst must be at least 1, got %d", ErrInvalidConfig, c.Burst)
	}
	return nil
}
