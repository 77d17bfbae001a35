package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/dustin/go-humanize"
)

// WAVSink writes each buffer to a WAV file instead of a device. Every Play
// overwrites the file.
type WAVSink struct {
	control

	path       string
	sampleRate int
	format     fsk.WAVFormat
}

// NewWAVSink returns a sink writing to path.
func NewWAVSink(path string, sampleRate int, format fsk.WAVFormat) (*WAVSink, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: wav sink needs an output path", ErrUnavailable)
	}
	return &WAVSink{path: path, sampleRate: sampleRate, format: format}, nil
}

// Path returns the output file.
func (s *WAVSink) Path() string {
	return s.path
}

// Play writes samples to the file. The write itself is not interruptible;
// a Stop or cancelled context before it starts returns ErrStopped.
func (s *WAVSink) Play(ctx context.Context, samples []float32) error {
	if len(samples) == 0 {
		return ErrEmptyBuffer
	}

	stop, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	select {
	case <-stop:
		return ErrStopped
	case <-ctx.Done():
		return ErrStopped
	default:
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.path, err)
	}
	if err := fsk.WriteWAV(f, samples, s.sampleRate, s.format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, err)
	}

	pcm := s.format.PCMFormat(s.sampleRate)
	size := len(samples) * pcm.BytesPerSample()
	log.Info("Wrote WAV file",
		"path", s.path,
		"format", s.format,
		"duration", fsk.CalculatePCMDuration(size, pcm),
		"size", humanize.Bytes(uint64(size)))
	return nil
}

// Stop interrupts a pending write.
func (s *WAVSink) Stop() error {
	s.interrupt()
	return nil
}

// Close rejects further writes.
func (s *WAVSink) Close() error {
	s.close()
	return nil
}

var _ Sink = (*WAVSink)(nil)
