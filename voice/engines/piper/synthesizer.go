package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Synthesizer turns text into raw 16-bit mono PCM using a voice model.
type Synthesizer interface {
	Synthesize(ctx context.Context, model, text string) ([]byte, error)
}

// ProcessSynthesizer runs a fresh Piper process for each request.
type ProcessSynthesizer struct {
	binary      string
	speakerID   int
	lengthScale float64
	timeout     time.Duration
}

// NewProcessSynthesizer creates a synthesizer for the configured binary.
func NewProcessSynthesizer(cfg Config) *ProcessSynthesizer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProcessSynthesizer{
		binary:      cfg.BinaryPath,
		speakerID:   cfg.SpeakerID,
		lengthScale: cfg.LengthScale,
		timeout:     timeout,
	}
}

// Synthesize runs Piper with text on stdin and returns its raw output.
func (s *ProcessSynthesizer) Synthesize(ctx context.Context, model, text string) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := []string{
		"--model", model,
		"--output-raw",
		"--speaker", strconv.Itoa(s.speakerID),
		"--length_scale", strconv.FormatFloat(s.lengthScale, 'f', 3, 64),
	}

	cmd := exec.CommandContext(ctx, s.binary, args...) //nolint:gosec
	cmd.WaitDelay = time.Second

	// stdin must be set before the process starts.
	cmd.Stdin = strings.NewReader(text + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("Running piper", "binary", s.binary, "model", model, "chars", len(text))

	err := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("piper timed out after %v", s.timeout)
		}
		return nil, ctxErr
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("piper failed: %w\nstderr: %s", err, msg)
		}
		return nil, fmt.Errorf("piper failed: %w", err)
	}

	if stdout.Len() == 0 {
		return nil, errors.New("no audio generated")
	}

	return stdout.Bytes(), nil
}
