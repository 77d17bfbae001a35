package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrStopped is returned by Play when playback was interrupted by Stop
	// or by cancelling its context.
	ErrStopped = errors.New("playback stopped")

	// ErrClosed is returned when using a sink after Close.
	ErrClosed = errors.New("sink is closed")

	// ErrEmptyBuffer is returned when Play is called without samples.
	ErrEmptyBuffer = errors.New("audio buffer is empty")

	// ErrUnavailable is returned when a backend cannot be used in this
	// build or on this machine.
	ErrUnavailable = errors.New("audio backend unavailable")
)

// Sink plays mono float32 sample buffers.
type Sink interface {
	// Play blocks until samples have been played, ctx is cancelled or Stop
	// is called. An interrupted playback returns ErrStopped.
	Play(ctx context.Context, samples []float32) error
	// Stop interrupts the current playback, if any. It is idempotent.
	Stop() error
	// Close releases the device.
	Close() error
}

// State is the playback state of a sink.
type State int32

const (
	StateIdle State = iota
	StatePlaying
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// control tracks the active playback of a sink and lets Stop interrupt it
// from another goroutine. Each Play gets its own stop channel, so a Stop
// issued while idle does not affect the next playback.
type control struct {
	mu     sync.Mutex
	state  atomic.Int32
	stopCh chan struct{}
	done   chan struct{}
}

// begin marks the sink as playing and returns the stop channel for this
// playback. A running playback is interrupted and waited for first.
func (c *control) begin() (<-chan struct{}, error) {
	for {
		c.mu.Lock()
		if State(c.state.Load()) == StateClosed {
			c.mu.Unlock()
			return nil, ErrClosed
		}
		if c.stopCh != nil {
			done := c.interruptLocked()
			c.mu.Unlock()
			<-done
			continue
		}

		stop := make(chan struct{})
		c.stopCh = stop
		c.done = make(chan struct{})
		c.state.Store(int32(StatePlaying))
		c.mu.Unlock()
		return stop, nil
	}
}

// end marks the playback started by begin as finished.
func (c *control) end() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.stopCh = nil
	if State(c.state.Load()) == StatePlaying {
		c.state.Store(int32(StateIdle))
	}
}

// interrupt closes the stop channel and waits for the playback to return.
func (c *control) interrupt() bool {
	c.mu.Lock()
	done := c.interruptLocked()
	c.mu.Unlock()

	if done == nil {
		return false
	}
	<-done
	return true
}

func (c *control) interruptLocked() chan struct{} {
	if c.stopCh == nil {
		return nil
	}
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	return c.done
}

// close interrupts playback and marks the sink closed. It reports whether
// the sink was already closed.
func (c *control) close() bool {
	c.interrupt()
	return State(c.state.Swap(int32(StateClosed))) == StateClosed
}

// State returns the current playback state.
func (c *control) State() State {
	return State(c.state.Load())
}

// IsPlaying reports whether a buffer is being played.
func (c *control) IsPlaying() bool {
	return c.State() == StatePlaying
}
