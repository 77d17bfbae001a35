// Package watch calls back with a file's contents whenever it is written.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last write before the
// file is read.
const DefaultDebounce = 250 * time.Millisecond

// Watcher follows a single file.
type Watcher struct {
	debounce time.Duration
}

// New returns a watcher with the given debounce period. A non-positive
// value selects DefaultDebounce.
func New(debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{debounce: debounce}
}

// Run watches path until ctx is cancelled and calls fn with the trimmed
// file contents after each burst of writes. Blank contents are skipped.
// The parent directory is watched so editors that replace the file on save
// keep working.
func (w *Watcher) Run(ctx context.Context, path string, fn func(text string)) error {
	fw, abs, err := open(path)
	if err != nil {
		return err
	}
	defer fw.Close()

	return w.loop(ctx, fw, abs, fn)
}

func open(path string) (*fsnotify.Watcher, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, "", fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, "", fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Info("fsnotify watching file", "file", abs)
	return fw, abs, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, path string, fn func(string)) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			timer.Reset(w.debounce)

		case <-timer.C:
			deliver(path, fn)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "file", path, "error", err)
		}
	}
}

func deliver(path string, fn func(string)) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read watched file", "file", path, "error", err)
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		log.Debug("Watched file is empty", "file", path)
		return
	}
	fn(text)
}
