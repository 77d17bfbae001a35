package beacon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/rtty/internal/audio"
	"github.com/dgnsrekt/rtty/rtty"
)

func newTransmitter(t *testing.T, speed float64) (*rtty.Transmitter, *audio.MockSink) {
	t.Helper()
	cfg := rtty.DefaultConfig()
	cfg.Backend = audio.BackendMock
	cfg.Cache.Enabled = false

	sink := audio.NewMockSink(cfg.SampleRate, audio.MockCallbacks{})
	sink.SetSpeed(speed)
	tr, err := rtty.NewTransmitter(cfg, sink)
	if err != nil {
		t.Fatalf("NewTransmitter() error = %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr, sink
}

func TestRunCount(t *testing.T) {
	tr, sink := newTransmitter(t, 1000)

	b := New(tr, 10*time.Millisecond)
	sent, err := b.Run(context.Background(), "VVV DE R1ABC", 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sent != 3 {
		t.Errorf("sent = %d, want 3", sent)
	}
	if got := sink.Metrics().Completed; got != 3 {
		t.Errorf("sink completed %d playbacks, want 3", got)
	}
}

func TestRunInterval(t *testing.T) {
	tr, _ := newTransmitter(t, 1000)

	b := New(tr, 100*time.Millisecond)
	start := time.Now()
	if _, err := b.Run(context.Background(), "CQ", 3); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The first transmission starts at once, the next two wait an interval.
	if elapsed := time.Since(start); elapsed < 190*time.Millisecond {
		t.Errorf("three transmissions took %v, want at least 200ms", elapsed)
	}
}

func TestRunCancel(t *testing.T) {
	tr, sink := newTransmitter(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := New(tr, 0).Run(ctx, "RYRYRYRYRYRY", 0)
		done <- err
	}()

	if !sink.WaitUntilPlaying(2 * time.Second) {
		t.Fatal("beacon never started playing")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if tr.Active() {
		t.Error("transmission still active after cancel")
	}
}

func TestRunBlankText(t *testing.T) {
	tr, _ := newTransmitter(t, 1000)

	sent, err := New(tr, 0).Run(context.Background(), "   ", 2)
	if !errors.Is(err, ErrNothingToSend) {
		t.Errorf("Run() error = %v, want ErrNothingToSend", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
}

func TestRunSinkFailure(t *testing.T) {
	tr, sink := newTransmitter(t, 1000)
	sink.FailNext(errors.New("no device"))

	sent, err := New(tr, 0).Run(context.Background(), "CQ", 2)
	var te *rtty.TransmitError
	if !errors.As(err, &te) {
		t.Fatalf("Run() error = %v, want *rtty.TransmitError", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
}

func TestRunExternalStop(t *testing.T) {
	tr, sink := newTransmitter(t, 1)

	done := make(chan error, 1)
	go func() {
		_, err := New(tr, 0).Run(context.Background(), "RYRYRYRYRYRY", 0)
		done <- err
	}()

	if !sink.WaitUntilPlaying(2 * time.Second) {
		t.Fatal("beacon never started playing")
	}
	tr.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Errorf("Run() error = %v, want ErrInterrupted", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestInterval(t *testing.T) {
	tr, _ := newTransmitter(t, 1000)

	if got := New(tr, time.Minute).Interval(); got != time.Minute {
		t.Errorf("Interval() = %v, want 1m", got)
	}
	if got := New(tr, 0).Interval(); got != 0 {
		t.Errorf("Interval() = %v, want 0", got)
	}
}
