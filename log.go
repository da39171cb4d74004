package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// logConfig is read from the environment only, so logging works before the
// config file has been located.
type logConfig struct {
	Debug  bool   `env:"NAVVOICE_DEBUG"`
	File   string `env:"NAVVOICE_LOG_FILE"`
	Stderr bool   `env:"NAVVOICE_LOG_STDERR"`
}

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "navvoice").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "navvoice.log"), nil
}

func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[logConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing log config: %w", err)
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	log.SetReportTimestamp(true)

	if cfg.Stderr {
		log.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	}

	log.SetOutput(io.Discard)

	logFile := cfg.File
	if logFile == "" {
		logFile, err = getLogFilePath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return f.Close, nil
}
