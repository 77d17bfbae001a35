package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/rtty/internal/fsk"
)

func TestNewSink(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{name: "mock", opts: Options{Backend: "mock"}, want: "*audio.MockSink"},
		{name: "mock upper case", opts: Options{Backend: " MOCK "}, want: "*audio.MockSink"},
		{name: "wav", opts: Options{Backend: "wav", OutputPath: filepath.Join(dir, "a.wav")}, want: "*audio.WAVSink"},
		{name: "auto with output", opts: Options{OutputPath: filepath.Join(dir, "b.wav")}, want: "*audio.WAVSink"},
		{name: "wav without path", opts: Options{Backend: "wav"}, wantErr: true},
		{name: "unknown", opts: Options{Backend: "alsa"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewSink(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if sink != nil {
					t.Errorf("expected nil sink on error, got %T", sink)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSink failed: %v", err)
			}
			defer sink.Close()

			if got := typeName(sink); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewSinkAutoInCI(t *testing.T) {
	t.Setenv("CI", "true")

	if !IsCI() {
		t.Fatal("IsCI should detect CI=true")
	}

	sink, err := NewSink(Options{Backend: BackendAuto, MockSpeed: 50})
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}
	defer sink.Close()

	mock, ok := sink.(*MockSink)
	if !ok {
		t.Fatalf("expected mock sink in CI, got %T", sink)
	}
	if mock.speed != 50 {
		t.Errorf("speed = %g, want 50", mock.speed)
	}
}

func TestMockAudioEnv(t *testing.T) {
	t.Setenv("RTTY_MOCK_AUDIO", "true")
	if !IsCI() {
		t.Error("RTTY_MOCK_AUDIO=true should select the mock")
	}
}

func TestWAVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cq.wav")
	sink, err := NewWAVSink(path, 8000, fsk.WAVPCM16)
	if err != nil {
		t.Fatalf("NewWAVSink failed: %v", err)
	}
	defer sink.Close()

	// Stop while idle must not block the write.
	_ = sink.Stop()

	samples := []float32{0, 0.25, -0.25, 0.5}
	if err := sink.Play(context.Background(), samples); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var want bytes.Buffer
	if err := fsk.WriteWAV(&want, samples, 8000, fsk.WAVPCM16); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Error("file content differs from WriteWAV output")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Play(ctx, samples); !errors.Is(err, ErrStopped) {
		t.Errorf("Play with cancelled context returned %v, want ErrStopped", err)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *MockSink:
		return "*audio.MockSink"
	case *WAVSink:
		return "*audio.WAVSink"
	case *OtoSink:
		return "*audio.OtoSink"
	case *PortAudioSink:
		return "*audio.PortAudioSink"
	default:
		return "unknown"
	}
}
