//go:build nocgo
// +build nocgo

package audio

import (
	"context"
	"fmt"
)

// OtoSink is unavailable in builds without cgo.
type OtoSink struct{}

// NewOtoSink always fails in nocgo builds.
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	return nil, fmt.Errorf("%w: oto requires cgo", ErrUnavailable)
}

func (s *OtoSink) Play(ctx context.Context, samples []float32) error { return ErrUnavailable }
func (s *OtoSink) Stop() error                                        { return nil }
func (s *OtoSink) Close() error                                       { return nil }
