package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/audio"
	"github.com/dgnsrekt/rtty/internal/beacon"
	"github.com/dgnsrekt/rtty/internal/cache"
	"github.com/dgnsrekt/rtty/rtty"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
)

// sendOptions are the per-command overrides of the configured output.
type sendOptions struct {
	Output   string        // write a WAV file instead of playing
	PCM16    bool          // 16-bit WAV instead of float
	Repeat   int           // number of transmissions, 0 until interrupted; 1 sends once
	Interval time.Duration // time between beacon transmissions
	NoCache  bool
}

// newTransmitter builds the configured transmitter. Cancelling ctx stops
// every transmission it starts. The returned cleanup closes the
// transmitter and flushes the render cache.
func newTransmitter(ctx context.Context, opts sendOptions) (*rtty.Transmitter, func(), error) {
	cfg, err := rtty.LoadConfigFromViper()
	if err != nil {
		return nil, nil, err
	}

	wavFormat, err := rtty.ParseWAVFormat(cfg.WAVFormat)
	if err != nil {
		return nil, nil, err
	}
	if opts.PCM16 {
		wavFormat, _ = rtty.ParseWAVFormat("pcm16")
	}

	sinkBackend := cfg.Backend
	if opts.Output != "" {
		sinkBackend = audio.BackendWAV
	}
	sink, err := audio.NewSink(audio.Options{
		Backend:    sinkBackend,
		SampleRate: cfg.SampleRate,
		OutputPath: opts.Output,
		WAVFormat:  wavFormat,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open audio output: %w", err)
	}

	var (
		options = []rtty.Option{rtty.WithBaseContext(ctx)}
		manager *cache.Manager
	)
	if cfg.Cache.Enabled && !opts.NoCache {
		manager, err = newCacheManager(cfg.Cache)
		if err != nil {
			log.Warn("Render cache disabled", "error", err)
		} else {
			options = append(options, rtty.WithCache(manager))
		}
	}

	tr, err := rtty.NewTransmitter(cfg, sink, options...)
	if err != nil {
		_ = sink.Close()
		if manager != nil {
			_ = manager.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		if err := tr.Close(); err != nil {
			log.Warn("Failed to close audio output", "error", err)
		}
		if manager != nil {
			stats := manager.Stats()
			log.Debug("Render cache",
				"hits", stats.Hits,
				"misses", stats.Misses,
				"memory", humanize.IBytes(uint64(stats.Memory.Size)), //nolint:gosec
				"disk", humanize.IBytes(uint64(stats.Disk.Size)))     //nolint:gosec
			if err := manager.Close(); err != nil {
				log.Warn("Failed to close render cache", "error", err)
			}
		}
	}
	return tr, cleanup, nil
}

func newCacheManager(cfg rtty.CacheConfig) (*cache.Manager, error) {
	if cfg.Dir == "" {
		dir, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		cfg.Dir = dir
	}
	return cache.NewManager(cfg.CacheManagerConfig())
}

func defaultCacheDir() (string, error) {
	dir, err := gap.NewScope(gap.User, "rtty").CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "renders"), nil
}

// transmitText sends text once, or as a beacon when a repeat count or
// interval is set. Cancelling ctx stops the transmission.
func transmitText(ctx context.Context, text string, opts sendOptions) error {
	tr, cleanup, err := newTransmitter(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Output == "" && opts.Repeat != 1 {
		sent, err := beacon.New(tr, opts.Interval).Run(ctx, text, opts.Repeat)
		fmt.Fprintf(os.Stderr, "Sent %d transmission(s)\n", sent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	tx, err := tr.Transmit(text, nil)
	if err != nil {
		return err
	}
	if tx == nil {
		fmt.Fprintln(os.Stderr, "Nothing to send")
		return nil
	}

	if opts.Output == "" {
		fmt.Fprintf(os.Stderr, "Transmitting %s of RTTY, press Ctrl-C to stop\n",
			tx.Duration().Round(100*time.Millisecond))
	}

	select {
	case <-tx.Done():
	case <-ctx.Done():
		tr.Stop()
		<-tx.Done()
	}

	switch {
	case tx.Err() != nil:
		return tx.Err()
	case tx.Interrupted():
		fmt.Fprintln(os.Stderr, "Transmission interrupted")
	case opts.Output != "":
		fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", opts.Output, tx.Duration().Round(time.Millisecond))
	default:
		fmt.Fprintln(os.Stderr, "Transmission completed")
	}
	return nil
}
