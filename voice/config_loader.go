package voice

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads voice configuration from Viper.
func LoadConfigFromViper(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("voice.language") {
		cfg.Language = v.GetString("voice.language")
	}
	if v.IsSet("voice.muted") {
		cfg.Muted = v.GetBool("voice.muted")
	}
	if v.IsSet("voice.engine") {
		cfg.Engine = v.GetString("voice.engine")
	}
	if v.IsSet("voice.fallback") {
		cfg.Fallback = v.GetString("voice.fallback")
	}
	if v.IsSet("voice.max_failures") {
		cfg.MaxFailures = v.GetInt("voice.max_failures")
	}

	cfg.Piper = loadPiperConfig(v)
	cfg.Mock = loadMockConfig(v)
	cfg.Simulate = loadSimulateConfig(v)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid voice configuration: %w", err)
	}

	return cfg, nil
}

// loadPiperConfig loads Piper-specific configuration from Viper.
func loadPiperConfig(v *viper.Viper) PiperConfig {
	cfg := DefaultPiperConfig()

	if v.IsSet("voice.piper.binary") {
		cfg.Binary = v.GetString("voice.piper.binary")
	}
	if v.IsSet("voice.piper.voices") {
		cfg.Voices = v.GetStringMapString("voice.piper.voices")
	}
	if v.IsSet("voice.piper.sample_rate") {
		cfg.SampleRate = v.GetInt("voice.piper.sample_rate")
	}
	if v.IsSet("voice.piper.speaker_id") {
		cfg.SpeakerID = v.GetInt("voice.piper.speaker_id")
	}
	if v.IsSet("voice.piper.length_scale") {
		cfg.LengthScale = v.GetFloat64("voice.piper.length_scale")
	}
	if v.IsSet("voice.piper.volume") {
		cfg.Volume = v.GetFloat64("voice.piper.volume")
	}
	if v.IsSet("voice.piper.timeout") {
		if d, err := time.ParseDuration(v.GetString("voice.piper.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	if v.IsSet("voice.piper.buffer_size") {
		if d, err := time.ParseDuration(v.GetString("voice.piper.buffer_size")); err == nil {
			cfg.BufferSize = d
		}
	}

	return cfg
}

// loadMockConfig loads mock engine configuration from Viper.
func loadMockConfig(v *viper.Viper) MockConfig {
	cfg := DefaultMockConfig()

	if v.IsSet("voice.mock.init_delay") {
		if d, err := time.ParseDuration(v.GetString("voice.mock.init_delay")); err == nil {
			cfg.InitDelay = d
		}
	}
	if v.IsSet("voice.mock.words_per_minute") {
		cfg.WordsPerMinute = v.GetInt("voice.mock.words_per_minute")
	}
	if v.IsSet("voice.mock.languages") {
		cfg.Languages = v.GetStringSlice("voice.mock.languages")
	}
	if v.IsSet("voice.mock.fail_init") {
		cfg.FailInit = v.GetBool("voice.mock.fail_init")
	}

	return cfg
}

// loadSimulateConfig loads route simulation configuration from Viper.
func loadSimulateConfig(v *viper.Viper) SimulateConfig {
	cfg := DefaultSimulateConfig()

	if v.IsSet("voice.simulate.steps_per_second") {
		cfg.StepsPerSecond = v.GetFloat64("voice.simulate.steps_per_second")
	}
	if v.IsSet("voice.simulate.burst") {
		cfg.Burst = v.GetInt("voice.simulate.burst")
	}

	return cfg
}

// SetDefaults sets default values in Viper for voice configuration.
func SetDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("voice.language", defaults.Language)
	v.SetDefault("voice.muted", defaults.Muted)
	v.SetDefault("voice.engine", defaults.Engine)
	v.SetDefault("voice.fallback", defaults.Fallback)
	v.SetDefault("voice.max_failures", defaults.MaxFailures)

	// Piper defaults
	v.SetDefault("voice.piper.binary", defaults.Piper.Binary)
	v.SetDefault("voice.piper.sample_rate", defaults.Piper.SampleRate)
	v.SetDefault("voice.piper.speaker_id", defaults.Piper.SpeakerID)
	v.SetDefault("voice.piper.length_scale", defaults.Piper.LengthScale)
	v.SetDefault("voice.piper.volume", defaults.Piper.Volume)
	v.SetDefault("voice.piper.timeout", defaults.Piper.Timeout.String())
	v.SetDefault("voice.piper.buffer_size", defaults.Piper.BufferSize.String())

	// Mock defaults
	v.SetDefault("voice.mock.init_delay", defaults.Mock.InitDelay.String())
	v.SetDefault("voice.mock.words_per_minute", defaults.Mock.WordsPerMinute)
	v.SetDefault("voice.mock.languages", defaults.Mock.Languages)
	v.SetDefault("voice.mock.fail_init", defaults.Mock.FailInit)

	// Simulation defaults
	v.SetDefault("voice.simulate.steps_per_second", defaults.Simulate.StepsPerSecond)
	v.SetDefault("voice.simulate.burst", defaults.Simulate.Burst)
}
