package fsk

import "errors"

var (
	// ErrInvalidConfig is returned when the signal parameters cannot
	// produce audio.
	ErrInvalidConfig = errors.New("invalid fsk config")

	// ErrBufferTooLarge is returned when a message would render past the
	// configured maximum duration.
	ErrBufferTooLarge = errors.New("rendered signal exceeds maximum duration")

	// ErrEmptyPCM is returned for empty or misaligned sample data.
	ErrEmptyPCM = errors.New("empty PCM data")
)
