package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `voice:
  # instruction language as a BCP 47 tag
  language: "en"
  # start muted
  muted: false
  # speech engine: mock or piper
  engine: "mock"
  # engine to switch to after max_failures failed instructions
  # fallback: "mock"
  max_failures: 3

  # Piper engine configuration
  piper:
    binary: "piper"
    # one voice model per language tag
    voices:
      # en: "~/.local/share/piper/en_US-lessac-medium.onnx"
      # de: "~/.local/share/piper/de_DE-thorsten-medium.onnx"
    sample_rate: 22050
    speaker_id: 0
    length_scale: 1.0
    volume: 1.0
    timeout: "30s"
    buffer_size: "50ms"

  # Mock engine configuration (prints instead of speaking)
  mock:
    init_delay: "10ms"
    words_per_minute: 150
    languages: ["en", "de", "fr", "es"]
    fail_init: false

  # Route simulation pacing
  simulate:
    steps_per_second: 1.0
    burst: 1
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the navvoice config file",
	Long:    paragraph(fmt.Sprintf("\n%s the navvoice config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("navvoice config\nnavvoice config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if configFile == "" {
			configFile = viper.ConfigFileUsed()
		}
		if err := ensureConfigFile(configFile); err != nil {
			return err
		}

		c, err := editor.Cmd("navvoice", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// ensureConfigFile writes the default navvoice config to path unless a
// file already exists there. An existing file is never touched.
func ensureConfigFile(path string) error {
	if path == "" {
		return errors.New("no navvoice config location, pass one with --config")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("navvoice config %s must be a .yml or .yaml file", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to create navvoice config: %w", err)
	}
	if _, err := f.WriteString(defaultConfig); err != nil {
		_ = f.Close()
		return fmt.Errorf("unable to write navvoice config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to write navvoice config: %w", err)
	}
	log.Info("Wrote default configuration", "path", path)
	return nil
}
