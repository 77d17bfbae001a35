//go:build nocgo
// +build nocgo

package audio

import (
	"context"
	"fmt"
)

// PortAudioSink is unavailable in builds without cgo.
type PortAudioSink struct{}

// NewPortAudioSink always fails in nocgo builds.
func NewPortAudioSink(sampleRate int) (*PortAudioSink, error) {
	return nil, fmt.Errorf("%w: portaudio requires cgo", ErrUnavailable)
}

func (s *PortAudioSink) Play(ctx context.Context, samples []float32) error { return ErrUnavailable }
func (s *PortAudioSink) Stop() error                                        { return nil }
func (s *PortAudioSink) Close() error                                       { return nil }
