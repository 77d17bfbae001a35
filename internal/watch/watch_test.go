package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, path string, debounce time.Duration) <-chan string {
	t.Helper()

	fw, abs, err := open(path)
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = New(debounce).loop(ctx, fw, abs, func(text string) { got <- text })
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		fw.Close()
	})
	return got
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatchDebounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beacon.txt")
	writeFile(t, path, "")

	got := startWatcher(t, path, 50*time.Millisecond)

	writeFile(t, path, "CQ")
	writeFile(t, path, "CQ CQ")
	writeFile(t, path, "  CQ CQ DE R1ABC\n")

	select {
	case text := <-got:
		if text != "CQ CQ DE R1ABC" {
			t.Errorf("got %q, want %q", text, "CQ CQ DE R1ABC")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no callback after write")
	}

	select {
	case text := <-got:
		t.Errorf("unexpected second callback %q", text)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchSkipsBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beacon.txt")
	writeFile(t, path, "RY")

	got := startWatcher(t, path, 20*time.Millisecond)
	writeFile(t, path, " \n\t")

	select {
	case text := <-got:
		t.Errorf("unexpected callback %q for blank file", text)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "beacon.txt")
	writeFile(t, path, "")

	got := startWatcher(t, path, 20*time.Millisecond)
	writeFile(t, filepath.Join(dir, "other.txt"), "NOT ME")

	select {
	case text := <-got:
		t.Errorf("unexpected callback %q for another file", text)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := New(0).Run(context.Background(), filepath.Join(t.TempDir(), "missing", "file.txt"), func(string) {})
	if err == nil {
		t.Error("Run() on a missing directory should fail")
	}
}

func TestNewDefaultDebounce(t *testing.T) {
	if got := New(0).debounce; got != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", got, DefaultDebounce)
	}
}
