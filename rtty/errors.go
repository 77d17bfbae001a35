package rtty

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned for configuration that cannot produce a
	// signal.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoSink is returned when a transmitter is created without a sink.
	ErrNoSink = errors.New("no audio sink")

	// ErrClosed is returned by Transmit after Close.
	ErrClosed = errors.New("transmitter is closed")
)

// TransmitError records which stage of a transmission failed.
type TransmitError struct {
	Err            error  // The underlying error
	Component      string // encoder, synthesizer, cache, sink
	Action         string // What was being done
	TransmissionID string // Empty when no transmission was started
}

// Error implements the error interface.
func (e *TransmitError) Error() string {
	msg := "unknown transmit error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Component == "" {
		return msg
	}
	if e.Action == "" {
		return fmt.Sprintf("%s: %s", e.Component, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Component, e.Action, msg)
}

// Unwrap returns the underlying error.
func (e *TransmitError) Unwrap() error {
	return e.Err
}

func newTransmitError(err error, component, action, id string) *TransmitError {
	return &TransmitError{Err: err, Component: component, Action: action, TransmissionID: id}
}
