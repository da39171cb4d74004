// Package audio plays raw PCM speech through the system audio device.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/ebitengine/oto/v3"
)

// Audio format of the PCM data accepted by Output.
const (
	// Channels is the number of audio channels (1 = mono)
	Channels = 1
	// BitDepth is the bit depth per sample (16-bit)
	BitDepth = 16
	// BytesPerSample is the number of bytes per sample
	BytesPerSample = BitDepth / 8
)

// Options configures the audio output.
type Options struct {
	SampleRate int
	BufferSize time.Duration
	Volume     float64
}

// Output plays signed 16-bit little-endian mono PCM.
type Output struct {
	context    *oto.Context
	ready      <-chan struct{}
	sampleRate int
	volume     float64
}

// oto allows a single context per process.
var (
	globalContext    *oto.Context
	globalReady      <-chan struct{}
	globalSampleRate int
	globalErr        error
	contextOnce      sync.Once
)

// Open returns an Output backed by the process-wide audio context,
// creating it on first use. The device may not be ready yet; see Ready.
// The sample rate of the first call wins.
func Open(opts Options) (*Output, error) {
	contextOnce.Do(func() {
		options := &oto.NewContextOptions{
			SampleRate:   opts.SampleRate,
			ChannelCount: Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   bufferSize(opts.BufferSize),
		}

		log.Debug("Initializing audio context",
			"sample_rate", options.SampleRate,
			"channels", options.ChannelCount,
			"buffer_size", options.BufferSize)

		globalContext, globalReady, globalErr = oto.NewContext(options)
		globalSampleRate = opts.SampleRate
	})

	if globalErr != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", globalErr)
	}
	if globalSampleRate != opts.SampleRate {
		log.Warn("Audio context already open with a different sample rate",
			"requested", opts.SampleRate, "actual", globalSampleRate)
	}

	return &Output{
		context:    globalContext,
		ready:      globalReady,
		sampleRate: globalSampleRate,
		volume:     opts.Volume,
	}, nil
}

// bufferSize applies platform defaults when d is zero.
func bufferSize(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	switch runtime.GOOS {
	case "darwin":
		// macOS benefits from larger buffers
		return 100 * time.Millisecond
	case "windows":
		return 80 * time.Millisecond
	default:
		return 50 * time.Millisecond
	}
}

// Ready is closed once the audio device can play.
func (o *Output) Ready() <-chan struct{} {
	return o.ready
}

// Duration returns the playback duration of pcm.
func (o *Output) Duration(pcm []byte) time.Duration {
	samples := len(pcm) / BytesPerSample / Channels
	return time.Duration(float64(samples) / float64(o.sampleRate) * float64(time.Second))
}

// Play plays pcm and blocks until playback finishes or ctx is done.
func (o *Output) Play(ctx context.Context, pcm []byte) error {
	select {
	case <-o.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	player := o.context.NewPlayer(bytes.NewReader(pcm))
	defer func() {
		if err := player.Close(); err != nil {
			log.Debug("Failed to close audio player", "err", err)
		}
	}()
	player.SetVolume(o.volume)

	log.Debug("Playing audio",
		"size", humanize.Bytes(uint64(len(pcm))),
		"duration", o.Duration(pcm))

	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				return player.Err()
			}
		}
	}
}
