// Package route reads and replays scripted navigation routes.
package route

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Action is the kind of a route step.
type Action int

const (
	// ActionSay speaks an instruction.
	ActionSay Action = iota
	// ActionMute mutes instructions.
	ActionMute
	// ActionUnmute unmutes instructions.
	ActionUnmute
	// ActionOffRoute signals that the driver left the route.
	ActionOffRoute
	// ActionWait pauses the replay.
	ActionWait
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionSay:
		return "say"
	case ActionMute:
		return "mute"
	case ActionUnmute:
		return "unmute"
	case ActionOffRoute:
		return "offroute"
	case ActionWait:
		return "wait"
	default:
		return "unknown"
	}
}

// Step is one line of a route script.
type Step struct {
	Line   int
	Action Action
	Text   string
	Wait   time.Duration
}

// ErrEmptyScript is returned when a script contains no steps.
var ErrEmptyScript = errors.New("route script has no steps")

// Parse reads a route script. Each non-blank line that does not start with
// '#' is a step: "say TEXT", "mute", "unmute", "offroute", "wait DURATION",
// or any other text, which is spoken.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		step, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		step.Line = lineNo
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read route script: %w", err)
	}

	if len(steps) == 0 {
		return nil, ErrEmptyScript
	}
	return steps, nil
}

func parseLine(line string) (Step, error) {
	keyword, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(keyword) {
	case "say":
		if rest == "" {
			return Step{}, errors.New("say needs text")
		}
		return Step{Action: ActionSay, Text: rest}, nil
	case "mute":
		return Step{Action: ActionMute}, nil
	case "unmute":
		return Step{Action: ActionUnmute}, nil
	case "offroute", "off-route":
		return Step{Action: ActionOffRoute}, nil
	case "wait":
		d, err := time.ParseDuration(rest)
		if err != nil {
			return Step{}, fmt.Errorf("invalid wait duration %q: %w", rest, err)
		}
		if d < 0 {
			return Step{}, fmt.Errorf("negative wait duration %q", rest)
		}
		return Step{Action: ActionWait, Wait: d}, nil
	default:
		return Step{Action: ActionSay, Text: line}, nil
	}
}

// Open opens a route script. "-" reads stdin. Files ending in .zst are
// decompressed.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open route script: %w", err)
	}
	if filepath.Ext(path) != ".zst" {
		return f, nil
	}

	return NewDecompressor(f)
}

// NewDecompressor wraps a zstd-compressed stream. Closing the result closes rc.
func NewDecompressor(rc io.ReadCloser) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("unable to read compressed route script: %w", err)
	}
	return &zstdReadCloser{dec: dec, underlying: rc}, nil
}

type zstdReadCloser struct {
	dec        *zstd.Decoder
	underlying io.Closer
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.underlying.Close()
}
