package fsk

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the signal parameters of the synthesizer.
type Config struct {
	// BaudRate is the symbol rate. A full symbol lasts 1/BaudRate seconds.
	BaudRate float64
	// MarkFreq is the tone for ones and stop bits, in Hz.
	MarkFreq float64
	// SpaceFreq is the tone for zeros, in Hz.
	SpaceFreq float64
	// Amplitude scales every sample; must be in (0, 1).
	Amplitude float64
	// SampleRate is the output rate in Hz.
	SampleRate int
	// LeadTone is the pure mark tone sent before and after the data.
	LeadTone time.Duration
	// TrailSilence is appended after the trailing mark tone.
	TrailSilence time.Duration
	// MaxDuration bounds the size of a rendered buffer.
	MaxDuration time.Duration
}

// DefaultConfig returns the standard amateur RTTY setup: 45.45 Bd with a
// 170 Hz shift at 1170/1000 Hz.
func DefaultConfig() Config {
	return Config{
		BaudRate:     45.45,
		MarkFreq:     1170,
		SpaceFreq:    1000,
		Amplitude:    0.8,
		SampleRate:   44100,
		LeadTone:     200 * time.Millisecond,
		TrailSilence: 200 * time.Millisecond,
		MaxDuration:  10 * time.Minute,
	}
}

// Validate checks that the configuration can produce a signal.
func (c Config) Validate() error {
	var errs []error

	if c.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("baud rate must be positive, got %g", c.BaudRate))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", c.SampleRate))
	}
	nyquist := float64(c.SampleRate) / 2
	if c.MarkFreq <= 0 || c.MarkFreq >= nyquist {
		errs = append(errs, fmt.Errorf("mark frequency must be in (0, %g) Hz, got %g", nyquist, c.MarkFreq))
	}
	if c.SpaceFreq <= 0 || c.SpaceFreq >= nyquist {
		errs = append(errs, fmt.Errorf("space frequency must be in (0, %g) Hz, got %g", nyquist, c.SpaceFreq))
	}
	if c.MarkFreq == c.SpaceFreq && c.MarkFreq > 0 {
		errs = append(errs, errors.New("mark and space frequencies must differ"))
	}
	if c.Amplitude <= 0 || c.Amplitude >= 1 {
		errs = append(errs, fmt.Errorf("amplitude must be in (0, 1), got %g", c.Amplitude))
	}
	if c.LeadTone < 0 || c.TrailSilence < 0 {
		errs = append(errs, errors.New("lead tone and trailing silence cannot be negative"))
	}
	if c.MaxDuration <= 0 {
		errs = append(errs, fmt.Errorf("max duration must be positive, got %s", c.MaxDuration))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// SymbolDuration returns the length of one full symbol in seconds.
func (c Config) SymbolDuration() float64 {
	return 1.0 / c.BaudRate
}

// Shift returns the distance between the mark and space tones in Hz.
func (c Config) Shift() float64 {
	return c.MarkFreq - c.SpaceFreq
}
