package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/rtty/internal/audio"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/dgnsrekt/rtty/internal/queue"
	"github.com/dgnsrekt/rtty/rtty"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigFileMatchesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(strings.NewReader(defaultConfig)); err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}

	got, err := rtty.LoadConfigFromViper()
	if err != nil {
		t.Fatalf("LoadConfigFromViper() error = %v", err)
	}
	if want := rtty.DefaultConfig(); got != want {
		t.Errorf("default config file = %+v, want %+v", got, want)
	}
}

func TestWriteConfigYAML(t *testing.T) {
	cfg := rtty.DefaultConfig()
	cfg.BaudRate = 50
	cfg.Cache.Dir = "/tmp/rtty"

	var buf bytes.Buffer
	if err := writeConfigYAML(&buf, cfg); err != nil {
		t.Fatalf("writeConfigYAML() error = %v", err)
	}

	var v configView
	if err := yaml.Unmarshal(buf.Bytes(), &v); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if v.RTTY.BaudRate != 50 {
		t.Errorf("baud_rate = %v, want 50", v.RTTY.BaudRate)
	}
	if v.RTTY.LeadTone != "200ms" {
		t.Errorf("lead_tone = %q, want 200ms", v.RTTY.LeadTone)
	}
	if v.RTTY.Cache.Dir != "/tmp/rtty" {
		t.Errorf("cache dir = %q", v.RTTY.Cache.Dir)
	}
}

func TestPrintEncoding(t *testing.T) {
	var buf bytes.Buffer
	if err := printEncoding(&buf, "E 3", fsk.DefaultConfig(), false); err != nil {
		t.Fatalf("printEncoding() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"LTRS", "FIGS", "CR", "LF",
		"0100001½",
		"units 9, characters 3, shifts 1",
		"symbols 72",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintEncodingSymbols(t *testing.T) {
	var buf bytes.Buffer
	if err := printEncoding(&buf, "E", fsk.DefaultConfig(), true); err != nil {
		t.Fatalf("printEncoding() error = %v", err)
	}
	if got := strings.Count(strings.TrimSpace(buf.String()), " "); got != 5 {
		t.Errorf("expected 6 units separated by 5 spaces, got %d", got)
	}
}

func TestPrintEncodingBlank(t *testing.T) {
	var buf bytes.Buffer
	if err := printEncoding(&buf, "  ", fsk.DefaultConfig(), false); err != nil {
		t.Fatalf("printEncoding() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "nothing to send" {
		t.Errorf("got %q", buf.String())
	}
}

func TestCodeTable(t *testing.T) {
	out := codeTable()
	for _, want := range []string{"CHAR", "SPACE", "CR", "LF", "Ж", "11011", "rus"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestReadTextArgs(t *testing.T) {
	got, err := readText([]string{"CQ", "DE", "R1ABC"})
	if err != nil {
		t.Fatalf("readText() error = %v", err)
	}
	if got != "CQ DE R1ABC" {
		t.Errorf("readText() = %q", got)
	}
}

func TestKeyQueue(t *testing.T) {
	cfg := rtty.DefaultConfig()
	cfg.Backend = audio.BackendMock
	cfg.Cache.Enabled = false

	sink := audio.NewMockSink(cfg.SampleRate, audio.MockCallbacks{})
	sink.SetSpeed(100)
	tr, err := rtty.NewTransmitter(cfg, sink)
	if err != nil {
		t.Fatalf("NewTransmitter: %v", err)
	}
	defer tr.Close()

	q := queue.New(4, queue.Reject)
	_ = q.Enqueue("CQ", queue.PriorityNormal)
	_ = q.Enqueue("   ", queue.PriorityNormal)
	_ = q.Enqueue("73", queue.PriorityNormal)

	done := make(chan struct{})
	go func() {
		defer close(done)
		keyQueue(context.Background(), tr, q)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for sink.Metrics().Completed < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	_ = q.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("keyQueue did not return after Close")
	}

	m := sink.Metrics()
	if m.Plays != 2 || m.Completed != 2 {
		t.Errorf("expected 2 completed plays, got %+v", m)
	}
}

func TestKeyQueueCancel(t *testing.T) {
	cfg := rtty.DefaultConfig()
	cfg.Backend = audio.BackendMock
	cfg.Cache.Enabled = false

	sink := audio.DefaultMockSink()
	tr, err := rtty.NewTransmitter(cfg, sink)
	if err != nil {
		t.Fatalf("NewTransmitter: %v", err)
	}
	defer tr.Close()

	q := queue.New(1, queue.DropOldest)
	defer q.Close()
	_ = q.Enqueue("RYRYRYRYRYRYRYRYRYRY", queue.PriorityNormal)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		keyQueue(ctx, tr, q)
	}()

	if !sink.WaitUntilPlaying(2 * time.Second) {
		t.Fatal("playback never started")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("keyQueue ignored cancellation")
	}
	if tr.Active() {
		t.Error("transmission still active after cancel")
	}
}

func TestNewTransmitterFollowsContext(t *testing.T) {
	viper.Set("rtty.backend", audio.BackendMock)
	viper.Set("rtty.cache.enabled", false)
	t.Cleanup(func() {
		viper.Set("rtty.backend", rtty.DefaultConfig().Backend)
		viper.Set("rtty.cache.enabled", rtty.DefaultConfig().Cache.Enabled)
	})

	ctx, cancel := context.WithCancel(context.Background())
	tr, cleanup, err := newTransmitter(ctx, sendOptions{Repeat: 1})
	if err != nil {
		t.Fatalf("newTransmitter: %v", err)
	}
	defer cleanup()

	tx, err := tr.Transmit("RYRYRYRYRYRYRYRYRYRY", nil)
	if err != nil {
		t.Fatalf("Transmit: %v", err)
	}
	cancel()

	select {
	case <-tx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("transmission ignored context cancellation")
	}
	if !tx.Interrupted() {
		t.Error("expected the transmission to be interrupted")
	}
}
