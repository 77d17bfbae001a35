package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgnsrekt/rtty/internal/fsk"
)

// MockSink simulates real-time playback without producing sound. It is
// used in CI and by tests.
type MockSink struct {
	control

	sampleRate int

	mu        sync.RWMutex
	speed     float64
	last      []float32
	callbacks MockCallbacks
	failNext  error

	position atomic.Int64 // nanoseconds into the current buffer

	playCount      atomic.Int64
	completeCount  atomic.Int64
	interruptCount atomic.Int64
	stopCount      atomic.Int64
}

// MockCallbacks provides hooks for testing. They run on the goroutine
// calling Play and must not call back into the sink's Stop.
type MockCallbacks struct {
	OnPlay      func(samples []float32)
	OnComplete  func()
	OnInterrupt func()
}

// MockMetrics contains playback counters for testing.
type MockMetrics struct {
	Plays       int64
	Completed   int64
	Interrupted int64
	Stops       int64
}

// DefaultMockSink returns a mock sink at 44.1 kHz playing in real time.
func DefaultMockSink() *MockSink {
	return NewMockSink(fsk.DefaultConfig().SampleRate, MockCallbacks{})
}

// NewMockSink creates a mock sink with custom callbacks.
func NewMockSink(sampleRate int, callbacks MockCallbacks) *MockSink {
	return &MockSink{
		sampleRate: sampleRate,
		speed:      1.0,
		callbacks:  callbacks,
	}
}

// Play simulates playback of samples.
func (m *MockSink) Play(ctx context.Context, samples []float32) error {
	if len(samples) == 0 {
		return ErrEmptyBuffer
	}

	m.mu.Lock()
	fail := m.failNext
	m.failNext = nil
	m.mu.Unlock()
	if fail != nil {
		return fail
	}

	stop, err := m.begin()
	if err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	m.last = make([]float32, len(samples))
	copy(m.last, samples)
	speed := m.speed
	m.mu.Unlock()

	m.position.Store(0)
	m.playCount.Add(1)
	if m.callbacks.OnPlay != nil {
		m.callbacks.OnPlay(samples)
	}

	total := fsk.SamplesToDuration(len(samples), m.sampleRate)
	return m.simulatePlayback(ctx, stop, total, speed)
}

// simulatePlayback waits out the buffer duration scaled by speed while
// tracking the position.
func (m *MockSink) simulatePlayback(ctx context.Context, stop <-chan struct{}, total time.Duration, speed float64) error {
	wall := time.Duration(float64(total) / speed)

	tickInterval := max(time.Duration(float64(100*time.Millisecond)/speed), 10*time.Millisecond)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	timer := time.NewTimer(wall)
	defer timer.Stop()

	start := time.Now()
	for {
		select {
		case <-stop:
			return m.interrupted()
		case <-ctx.Done():
			return m.interrupted()
		case <-timer.C:
			m.position.Store(int64(total))
			m.completeCount.Add(1)
			if m.callbacks.OnComplete != nil {
				m.callbacks.OnComplete()
			}
			return nil
		case <-ticker.C:
			pos := time.Duration(float64(time.Since(start)) * speed)
			m.position.Store(int64(min(pos, total)))
		}
	}
}

func (m *MockSink) interrupted() error {
	m.interruptCount.Add(1)
	if m.callbacks.OnInterrupt != nil {
		m.callbacks.OnInterrupt()
	}
	return ErrStopped
}

// Stop interrupts the current playback.
func (m *MockSink) Stop() error {
	m.stopCount.Add(1)
	m.interrupt()
	return nil
}

// Close stops playback and rejects further use.
func (m *MockSink) Close() error {
	m.close()
	return nil
}

// Test helper methods

// SetSpeed sets the simulated playback speed. 1.0 is real time, 100 plays
// a buffer a hundred times faster.
func (m *MockSink) SetSpeed(speed float64) {
	if speed <= 0 {
		speed = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = speed
}

// FailNext makes the next Play return err without playing.
func (m *MockSink) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Position returns the simulated position in the current buffer.
func (m *MockSink) Position() time.Duration {
	return time.Duration(m.position.Load())
}

// Last returns a copy of the most recently played buffer.
func (m *MockSink) Last() []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return nil
	}
	out := make([]float32, len(m.last))
	copy(out, m.last)
	return out
}

// Metrics returns playback counters.
func (m *MockSink) Metrics() MockMetrics {
	return MockMetrics{
		Plays:       m.playCount.Load(),
		Completed:   m.completeCount.Load(),
		Interrupted: m.interruptCount.Load(),
		Stops:       m.stopCount.Load(),
	}
}

// WaitUntilPlaying polls until a playback is in progress. It returns false
// on timeout.
func (m *MockSink) WaitUntilPlaying(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.IsPlaying() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return m.IsPlaying()
}

var _ Sink = (*MockSink)(nil)
