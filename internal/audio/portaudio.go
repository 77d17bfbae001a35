//go:build !nocgo
// +build !nocgo

package audio

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/gordonklaus/portaudio"
)

// DefaultFramesPerBuffer is the PortAudio write size. A Stop takes effect
// within one buffer.
const DefaultFramesPerBuffer = 1024

// PortAudioSink plays buffers on the default output device through
// PortAudio using blocking writes.
type PortAudioSink struct {
	control

	sampleRate      int
	framesPerBuffer int
}

// NewPortAudioSink initializes PortAudio. Close must be called to release
// the library.
func NewPortAudioSink(sampleRate int) (*PortAudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize PortAudio: %w", ErrUnavailable, err)
	}
	if _, err := portaudio.DefaultOutputDevice(); err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: no default output device: %w", ErrUnavailable, err)
	}

	log.Debug("Audio context initialized", "backend", "portaudio", "sample_rate", sampleRate)
	return &PortAudioSink{
		sampleRate:      sampleRate,
		framesPerBuffer: DefaultFramesPerBuffer,
	}, nil
}

// Play streams samples to the device one buffer at a time.
func (s *PortAudioSink) Play(ctx context.Context, samples []float32) error {
	if len(samples) == 0 {
		return ErrEmptyBuffer
	}

	stop, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	buffer := make([]float32, s.framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, fsk.Channels, float64(s.sampleRate), len(buffer), &buffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	log.Debug("Playback started",
		"backend", "portaudio",
		"duration", fsk.SamplesToDuration(len(samples), s.sampleRate))

	for pos := 0; pos < len(samples); pos += len(buffer) {
		select {
		case <-stop:
			stream.Abort()
			return ErrStopped
		case <-ctx.Done():
			stream.Abort()
			return ErrStopped
		default:
		}

		n := copy(buffer, samples[pos:])
		clear(buffer[n:])
		if err := stream.Write(); err != nil {
			stream.Abort()
			return fmt.Errorf("failed to write to stream: %w", err)
		}
	}

	// Stop drains the buffers already queued.
	if err := stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	return nil
}

// Stop interrupts the current playback.
func (s *PortAudioSink) Stop() error {
	s.interrupt()
	return nil
}

// Close stops playback and terminates PortAudio.
func (s *PortAudioSink) Close() error {
	if s.close() {
		return nil
	}
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

var _ Sink = (*PortAudioSink)(nil)
