package piper

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScript creates an executable stand-in for the piper binary.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "piper")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o700); err != nil { //nolint:gosec
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestProcessSynthesizer(t *testing.T) {
	// Echo the arguments and stdin so the test can inspect them.
	script := writeScript(t, `echo "$@"; cat`)
	s := NewProcessSynthesizer(Config{BinaryPath: script, SpeakerID: 3, LengthScale: 1.5})

	out, err := s.Synthesize(context.Background(), "/voices/en.onnx", "Turn left")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	got := string(out)
	for _, want := range []string{
		"--model /voices/en.onnx",
		"--output-raw",
		"--speaker 3",
		"--length_scale 1.500",
		"Turn left",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q does not contain %q", got, want)
		}
	}
}

func TestProcessSynthesizerErrors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		wantErr string
	}{
		{name: "exit status", script: "echo 'model not found' >&2; exit 1", wantErr: "model not found"},
		{name: "no output", script: "cat > /dev/null", wantErr: "no audio generated"},
		{name: "timeout", script: "exec sleep 5", timeout: 50 * time.Millisecond, wantErr: "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProcessSynthesizer(Config{BinaryPath: writeScript(t, tt.script), Timeout: tt.timeout})
			_, err := s.Synthesize(context.Background(), "model.onnx", "hello")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestProcessSynthesizerCancelled(t *testing.T) {
	s := NewProcessSynthesizer(Config{BinaryPath: writeScript(t, "exec sleep 5")})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	if _, err := s.Synthesize(ctx, "model.onnx", "hello"); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
