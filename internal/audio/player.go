//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoContext     *oto.Context
	otoContextRate int
	otoContextOnce sync.Once
	otoContextErr  error
)

func getOtoContext(sampleRate int) (*oto.Context, error) {
	otoContextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: fsk.Channels,
			Format:       oto.FormatFloat32LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoContextErr = fmt.Errorf("%w: failed to create oto context: %w", ErrUnavailable, err)
			return
		}
		<-ready
		otoContext, otoContextRate = ctx, sampleRate
		log.Debug("Audio context initialized", "backend", "oto", "sample_rate", sampleRate)
	})

	if otoContextErr != nil {
		return nil, otoContextErr
	}
	if otoContextRate != sampleRate {
		return nil, fmt.Errorf("%w: oto context already running at %d Hz, requested %d Hz",
			ErrUnavailable, otoContextRate, sampleRate)
	}
	return otoContext, nil
}

// OtoSink plays buffers on the default output device through oto/v3.
type OtoSink struct {
	control

	context    *oto.Context
	sampleRate int
	// pollInterval is how often a running player is checked for the end
	// of its data.
	pollInterval time.Duration
}

// NewOtoSink opens the shared oto context at sampleRate.
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	ctx, err := getOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &OtoSink{
		context:      ctx,
		sampleRate:   sampleRate,
		pollInterval: 20 * time.Millisecond,
	}, nil
}

// Play writes samples to the device and waits until they have been heard.
func (s *OtoSink) Play(ctx context.Context, samples []float32) error {
	if len(samples) == 0 {
		return ErrEmptyBuffer
	}

	stop, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	// The player reads from data for its whole lifetime; keep it referenced
	// until Play returns.
	format := fsk.Float32Format(s.sampleRate)
	data := format.Encode(samples)
	if err := fsk.ValidatePCMData(data, format); err != nil {
		return err
	}
	player := s.context.NewPlayer(bytes.NewReader(data))
	defer player.Close()

	player.Play()
	log.Debug("Playback started",
		"backend", "oto",
		"duration", fsk.CalculatePCMDuration(len(data), format))

	return s.monitorPlayback(ctx, stop, player)
}

// monitorPlayback polls the player until it drains or is interrupted.
func (s *OtoSink) monitorPlayback(ctx context.Context, stop <-chan struct{}, player *oto.Player) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			player.Pause()
			return ErrStopped
		case <-ctx.Done():
			player.Pause()
			return ErrStopped
		case <-ticker.C:
			if player.IsPlaying() {
				continue
			}
			if err := player.Err(); err != nil {
				return fmt.Errorf("oto playback failed: %w", err)
			}
			return nil
		}
	}
}

// Stop interrupts the current playback.
func (s *OtoSink) Stop() error {
	s.interrupt()
	return nil
}

// Close stops playback. The oto context itself lives for the process.
func (s *OtoSink) Close() error {
	s.close()
	return nil
}

var _ Sink = (*OtoSink)(nil)
