package rtty

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/audio"
	"github.com/dgnsrekt/rtty/internal/baudot"
	"github.com/dgnsrekt/rtty/internal/cache"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/google/uuid"
)

// CompletionFunc is called exactly once when a transmission ends, whether
// it played out, failed or was stopped. It runs on the playback goroutine
// before Done is closed, so it must not wait on the transmission.
type CompletionFunc func()

// RenderCache stores rendered signals by key.
type RenderCache interface {
	Get(key string) ([]float32, bool)
	Put(key string, samples []float32) error
}

// Option configures a Transmitter.
type Option func(*Transmitter)

// WithCache makes Render consult c before synthesizing.
func WithCache(c RenderCache) Option {
	return func(t *Transmitter) {
		t.cache = c
	}
}

// WithBaseContext ties every transmission to ctx; cancelling it stops
// playback like Stop.
func WithBaseContext(ctx context.Context) Option {
	return func(t *Transmitter) {
		t.base = ctx
	}
}

// Transmitter turns text into RTTY audio and plays it on a sink. Transmit
// returns immediately; playback runs on its own goroutine. Overlapping
// transmissions are not rejected here, callers that need a single
// transmission at a time check Active first.
type Transmitter struct {
	cfg   Config
	synth *fsk.Synthesizer
	sink  audio.Sink
	cache RenderCache
	base  context.Context

	mu     sync.Mutex
	active map[string]*Transmission
	closed bool
	wg     sync.WaitGroup
}

// NewTransmitter validates cfg and returns a transmitter playing on sink.
func NewTransmitter(cfg Config, sink audio.Sink, opts ...Option) (*Transmitter, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	synth, err := fsk.New(cfg.Synth())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	t := &Transmitter{
		cfg:    cfg,
		synth:  synth,
		sink:   sink,
		base:   context.Background(),
		active: make(map[string]*Transmission),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Config returns the transmitter configuration.
func (t *Transmitter) Config() Config {
	return t.cfg
}

// Synthesizer returns the synthesizer used for rendering.
func (t *Transmitter) Synthesizer() *fsk.Synthesizer {
	return t.synth
}

// Render encodes and synthesizes text without playing it. Whitespace-only
// text renders to nil. The returned slice may be shared with the cache and
// must not be modified.
func (t *Transmitter) Render(text string) ([]float32, error) {
	if isBlank(text) {
		return nil, nil
	}

	var key string
	if t.cache != nil {
		key = cache.Key(text, t.cfg.Synth())
		if samples, ok := t.cache.Get(key); ok {
			log.Debug("Render cache hit", "key", key, "samples", len(samples))
			return samples, nil
		}
	}

	samples, err := t.synth.Synthesize(baudot.Encode(text))
	if err != nil {
		return nil, newTransmitError(err, "synthesizer", "render", "")
	}

	if t.cache != nil {
		if err := t.cache.Put(key, samples); err != nil {
			log.Warn("Failed to cache rendering", "key", key, "error", err)
		}
	}
	return samples, nil
}

// Transmit renders text and starts playing it. Whitespace-only text is
// not sent: Transmit returns nil, nil and onComplete is never called.
// Render errors are returned directly, also without a callback.
func (t *Transmitter) Transmit(text string, onComplete CompletionFunc) (*Transmission, error) {
	if isBlank(text) {
		log.Info("Nothing to transmit")
		return nil, nil
	}

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	samples, err := t.Render(text)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(t.base)
	tx := &Transmission{
		id:         uuid.NewString(),
		text:       text,
		samples:    len(samples),
		duration:   fsk.SamplesToDuration(len(samples), t.cfg.SampleRate),
		started:    time.Now(),
		done:       make(chan struct{}),
		cancel:     cancel,
		onComplete: onComplete,
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	t.active[tx.id] = tx
	t.wg.Add(1)
	t.mu.Unlock()

	log.Info("Transmission started",
		"id", tx.id,
		"chars", len([]rune(text)),
		"duration", tx.duration.Round(time.Millisecond))

	go t.play(ctx, tx, samples)
	return tx, nil
}

func (t *Transmitter) play(ctx context.Context, tx *Transmission, samples []float32) {
	defer t.wg.Done()

	err := audio.ErrStopped
	if ctx.Err() == nil {
		err = t.sink.Play(ctx, samples)
	}

	t.mu.Lock()
	delete(t.active, tx.id)
	t.mu.Unlock()

	tx.complete(err)
}

// Stop interrupts every running transmission and the sink. Stopped
// transmissions complete with Interrupted set. Calling Stop again, or
// while idle, does nothing.
func (t *Transmitter) Stop() {
	t.mu.Lock()
	active := make([]*Transmission, 0, len(t.active))
	for _, tx := range t.active {
		active = append(active, tx)
	}
	t.mu.Unlock()

	for _, tx := range active {
		tx.Stop()
	}
	if err := t.sink.Stop(); err != nil {
		log.Warn("Failed to stop audio sink", "error", err)
	}
	if len(active) > 0 {
		log.Info("Transmission stopped", "count", len(active))
	}
}

// Active reports whether a transmission is playing.
func (t *Transmitter) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active) > 0
}

// Close stops all transmissions, waits for them to complete and closes the
// sink.
func (t *Transmitter) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.Stop()
	t.wg.Wait()
	return t.sink.Close()
}

// Transmission is one message being played. Its completion latch fires
// once.
type Transmission struct {
	id       string
	text     string
	samples  int
	duration time.Duration
	started  time.Time

	once       sync.Once
	done       chan struct{}
	cancel     context.CancelFunc
	onComplete CompletionFunc

	stopRequested atomic.Bool
	interrupted   atomic.Bool
	err           error
	finished      time.Time
}

// ID returns the unique transmission id.
func (tx *Transmission) ID() string { return tx.id }

// Text returns the message as given to Transmit.
func (tx *Transmission) Text() string { return tx.text }

// Samples returns the length of the rendered signal.
func (tx *Transmission) Samples() int { return tx.samples }

// Duration returns the playing time of the rendered signal.
func (tx *Transmission) Duration() time.Duration { return tx.duration }

// Started returns when playback was started.
func (tx *Transmission) Started() time.Time { return tx.started }

// Done is closed when the transmission has ended.
func (tx *Transmission) Done() <-chan struct{} { return tx.done }

// Wait blocks until the transmission ends and returns Err.
func (tx *Transmission) Wait() error {
	<-tx.done
	return tx.err
}

// Interrupted reports whether the transmission was stopped before it
// played out. Only meaningful after Done.
func (tx *Transmission) Interrupted() bool {
	return tx.interrupted.Load()
}

// Err returns the sink failure, if any, once Done is closed.
func (tx *Transmission) Err() error {
	select {
	case <-tx.done:
		return tx.err
	default:
		return nil
	}
}

// Elapsed returns how long the transmission ran, or has been running.
func (tx *Transmission) Elapsed() time.Duration {
	select {
	case <-tx.done:
		return tx.finished.Sub(tx.started)
	default:
		return time.Since(tx.started)
	}
}

// Stop interrupts this transmission only.
func (tx *Transmission) Stop() {
	tx.stopRequested.Store(true)
	tx.cancel()
}

func (tx *Transmission) complete(err error) {
	tx.once.Do(func() {
		switch {
		case err == nil:
		case errors.Is(err, audio.ErrStopped), errors.Is(err, context.Canceled):
			tx.interrupted.Store(true)
		default:
			tx.err = newTransmitError(err, "sink", "play", tx.id)
		}
		if tx.stopRequested.Load() {
			tx.interrupted.Store(true)
		}
		tx.finished = time.Now()
		tx.cancel()

		switch {
		case tx.err != nil:
			log.Error("Transmission failed", "id", tx.id, "error", tx.err)
		case tx.interrupted.Load():
			log.Info("Transmission interrupted", "id", tx.id, "elapsed", tx.Elapsed().Round(time.Millisecond))
		default:
			log.Info("Transmission completed", "id", tx.id, "duration", tx.duration.Round(time.Millisecond))
		}

		if tx.onComplete != nil {
			tx.onComplete()
		}
		close(tx.done)
	})
}

func isBlank(text string) bool {
	return strings.TrimSpace(baudot.Normalize(text)) == ""
}
