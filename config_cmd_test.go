package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/navvoice/voice"
)

func TestEnsureConfigFileWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "navvoice.yml")

	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensureConfigFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	v := viper.New()
	voice.SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}
	cfg, err := voice.LoadConfigFromViper(v)
	if err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Engine != voice.EngineMock || cfg.Language != "en" {
		t.Errorf("unexpected default config: engine %q, language %q", cfg.Engine, cfg.Language)
	}
}

func TestEnsureConfigFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navvoice.yaml")
	const custom = "voice:\n  language: de\n"
	if err := os.WriteFile(path, []byte(custom), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensureConfigFile failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(got) != custom {
		t.Errorf("existing config was overwritten: %q", got)
	}
}

func TestEnsureConfigFileRejects(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"no location", "", "no navvoice config location"},
		{"toml", filepath.Join(t.TempDir(), "navvoice.toml"), "must be a .yml or .yaml file"},
		{"no extension", filepath.Join(t.TempDir(), "navvoice"), "must be a .yml or .yaml file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ensureConfigFile(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ensureConfigFile(%q) = %v, want error containing %q", tt.path, err, tt.want)
			}
		})
	}

	upper := filepath.Join(t.TempDir(), "navvoice.YML")
	if err := ensureConfigFile(upper); err != nil {
		t.Errorf("upper case extension should be accepted: %v", err)
	}
}
