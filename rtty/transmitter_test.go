package rtty_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgnsrekt/rtty/internal/audio"
	"github.com/dgnsrekt/rtty/internal/baudot"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/dgnsrekt/rtty/rtty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() rtty.Config {
	cfg := rtty.DefaultConfig()
	cfg.Backend = audio.BackendMock
	cfg.Cache.Enabled = false
	return cfg
}

func newTestTransmitter(t *testing.T, speed float64, opts ...rtty.Option) (*rtty.Transmitter, *audio.MockSink) {
	t.Helper()
	cfg := testConfig()
	sink := audio.NewMockSink(cfg.SampleRate, audio.MockCallbacks{})
	sink.SetSpeed(speed)

	tr, err := rtty.NewTransmitter(cfg, sink, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr, sink
}

func waitDone(t *testing.T, tx *rtty.Transmission) {
	t.Helper()
	select {
	case <-tx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("transmission did not complete")
	}
}

func TestNewTransmitter(t *testing.T) {
	t.Run("nil sink", func(t *testing.T) {
		_, err := rtty.NewTransmitter(testConfig(), nil)
		assert.ErrorIs(t, err, rtty.ErrNoSink)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.BaudRate = 0
		_, err := rtty.NewTransmitter(cfg, audio.DefaultMockSink())
		assert.ErrorIs(t, err, rtty.ErrInvalidConfig)
	})
}

func TestTransmitCompletes(t *testing.T) {
	tr, sink := newTestTransmitter(t, 100)

	var calls atomic.Int32
	tx, err := tr.Transmit("CQ CQ DE R1ABC", func() { calls.Add(1) })
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.NotEmpty(t, tx.ID())
	assert.Equal(t, "CQ CQ DE R1ABC", tx.Text())

	require.NoError(t, tx.Wait())
	assert.EqualValues(t, 1, calls.Load())
	assert.False(t, tx.Interrupted())
	assert.NoError(t, tx.Err())
	assert.False(t, tr.Active())

	rendered, err := tr.Render("CQ CQ DE R1ABC")
	require.NoError(t, err)
	assert.Equal(t, rendered, sink.Last())
	assert.Equal(t, len(rendered), tx.Samples())
	assert.Equal(t, fsk.SamplesToDuration(len(rendered), 44100), tx.Duration())
	assert.EqualValues(t, 1, sink.Metrics().Completed)
}

func TestTransmitEmpty(t *testing.T) {
	tr, sink := newTestTransmitter(t, 100)

	for _, text := range []string{"", "   ", "\n\t"} {
		var calls atomic.Int32
		tx, err := tr.Transmit(text, func() { calls.Add(1) })
		assert.NoError(t, err)
		assert.Nil(t, tx)
		assert.Zero(t, calls.Load())
	}
	assert.Zero(t, sink.Metrics().Plays)
}

func TestStopInterrupts(t *testing.T) {
	tr, sink := newTestTransmitter(t, 1)

	var calls atomic.Int32
	tx, err := tr.Transmit(strings.Repeat("RYRYRY ", 10), func() { calls.Add(1) })
	require.NoError(t, err)
	require.True(t, sink.WaitUntilPlaying(2*time.Second))
	assert.True(t, tr.Active())

	tr.Stop()
	tr.Stop()
	waitDone(t, tx)
	tr.Stop()

	// A late Stop must not fire the callback again.
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
	assert.True(t, tx.Interrupted())
	assert.NoError(t, tx.Err())
	assert.Less(t, tx.Elapsed(), tx.Duration())
	assert.False(t, tr.Active())
}

func TestStopWhileIdle(t *testing.T) {
	tr, _ := newTestTransmitter(t, 100)

	tr.Stop()
	tr.Stop()

	tx, err := tr.Transmit("73", nil)
	require.NoError(t, err)
	waitDone(t, tx)
	assert.False(t, tx.Interrupted())
}

func TestTransmissionStop(t *testing.T) {
	tr, sink := newTestTransmitter(t, 1)

	tx, err := tr.Transmit(strings.Repeat("TEST ", 20), nil)
	require.NoError(t, err)
	require.True(t, sink.WaitUntilPlaying(2*time.Second))

	tx.Stop()
	waitDone(t, tx)
	assert.True(t, tx.Interrupted())
}

func TestStopBeforePlayback(t *testing.T) {
	tr, _ := newTestTransmitter(t, 1)

	var calls atomic.Int32
	tx, err := tr.Transmit("QRZ?", func() { calls.Add(1) })
	require.NoError(t, err)
	tr.Stop()

	waitDone(t, tx)
	assert.True(t, tx.Interrupted())
	assert.EqualValues(t, 1, calls.Load())
}

func TestSinkFailureCompletes(t *testing.T) {
	tr, sink := newTestTransmitter(t, 100)
	deviceErr := errors.New("device unplugged")
	sink.FailNext(deviceErr)

	var calls atomic.Int32
	tx, err := tr.Transmit("HELLO", func() { calls.Add(1) })
	require.NoError(t, err)

	err = tx.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, deviceErr)

	var te *rtty.TransmitError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "sink", te.Component)
	assert.Equal(t, tx.ID(), te.TransmissionID)

	assert.EqualValues(t, 1, calls.Load())
	assert.False(t, tx.Interrupted())
}

func TestBaseContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr, sink := newTestTransmitter(t, 1, rtty.WithBaseContext(ctx))

	tx, err := tr.Transmit(strings.Repeat("CQ ", 20), nil)
	require.NoError(t, err)
	require.True(t, sink.WaitUntilPlaying(2*time.Second))

	cancel()
	waitDone(t, tx)
	assert.True(t, tx.Interrupted())
}

func TestRenderMatchesSynthesizer(t *testing.T) {
	tr, _ := newTestTransmitter(t, 100)

	got, err := tr.Render("Привет 73")
	require.NoError(t, err)

	want, err := tr.Synthesizer().Synthesize(baudot.Encode("Привет 73"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	blank, err := tr.Render("  ")
	assert.NoError(t, err)
	assert.Nil(t, blank)
}

func TestRenderTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDuration = time.Second
	tr, err := rtty.NewTransmitter(cfg, audio.DefaultMockSink())
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Render("THIS MESSAGE IS FAR TOO LONG FOR ONE SECOND")
	assert.ErrorIs(t, err, fsk.ErrBufferTooLarge)

	var calls atomic.Int32
	tx, err := tr.Transmit("THIS MESSAGE IS FAR TOO LONG FOR ONE SECOND", func() { calls.Add(1) })
	assert.ErrorIs(t, err, fsk.ErrBufferTooLarge)
	assert.Nil(t, tx)
	assert.Zero(t, calls.Load())
}

type countingCache struct {
	mu   sync.Mutex
	data map[string][]float32
	hits int
	puts int
}

func (c *countingCache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[key]
	if ok {
		c.hits++
	}
	return s, ok
}

func (c *countingCache) Put(key string, samples []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = samples
	c.puts++
	return nil
}

func TestRenderUsesCache(t *testing.T) {
	c := &countingCache{data: make(map[string][]float32)}
	tr, _ := newTestTransmitter(t, 100, rtty.WithCache(c))

	first, err := tr.Render("CQ")
	require.NoError(t, err)
	second, err := tr.Render("cq")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.puts)
	assert.Equal(t, 1, c.hits)
}

func TestClose(t *testing.T) {
	tr, sink := newTestTransmitter(t, 1)

	tx, err := tr.Transmit(strings.Repeat("DE ", 20), nil)
	require.NoError(t, err)
	require.True(t, sink.WaitUntilPlaying(2*time.Second))

	require.NoError(t, tr.Close())
	assert.True(t, tx.Interrupted())
	assert.Equal(t, audio.StateClosed, sink.State())

	_, err = tr.Transmit("AGAIN", nil)
	assert.ErrorIs(t, err, rtty.ErrClosed)
	assert.NoError(t, tr.Close())
}
