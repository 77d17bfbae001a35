package fsk

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/baudot"
	"github.com/dustin/go-humanize"
)

// SegmentKind identifies the part of the buffer a segment belongs to.
type SegmentKind int

const (
	// SegmentLead is the pure mark tone before the data.
	SegmentLead SegmentKind = iota
	// SegmentData is one symbol of the message.
	SegmentData
	// SegmentTrail is the pure mark tone after the data.
	SegmentTrail
	// SegmentSilence is the zero padding at the end.
	SegmentSilence
)

// Segment is one contiguous piece of the output buffer.
type Segment struct {
	Kind   SegmentKind
	Symbol baudot.Symbol // only meaningful for SegmentData
	Tone   Tone
	Offset int // first sample in the buffer
}

// Samples returns the length of the segment.
func (s Segment) Samples() int {
	return s.Tone.Samples()
}

// Synthesizer turns symbol streams into phase-continuous AFSK audio.
// It holds no per-message state and is safe for concurrent use.
type Synthesizer struct {
	cfg Config
}

// New returns a synthesizer for the given configuration.
func New(cfg Config) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Synthesizer{cfg: cfg}, nil
}

// Config returns the synthesizer configuration.
func (s *Synthesizer) Config() Config {
	return s.cfg
}

func (s *Synthesizer) tone(freq, seconds, phase float64) Tone {
	return Tone{
		Freq:       freq,
		Seconds:    seconds,
		Phase:      phase,
		Amplitude:  s.cfg.Amplitude,
		SampleRate: s.cfg.SampleRate,
	}
}

// Tone renders a sine burst with the configured amplitude and rate.
func (s *Synthesizer) Tone(freq, seconds, phase float64) []float32 {
	return s.tone(freq, seconds, phase).New()
}

// Silence returns seconds of zero samples at the configured rate.
func (s *Synthesizer) Silence(seconds float64) []float32 {
	return Silence(seconds, s.cfg.SampleRate)
}

// Segments lays out the buffer for symbols: the lead tone, one tone per
// symbol, the trailing tone and the silence pad. The lead tone and the
// first symbol both start at phase zero; every later tone starts at the
// phase where the previous one ended.
func (s *Synthesizer) Segments(symbols []baudot.Symbol) []Segment {
	segs := make([]Segment, 0, len(symbols)+3)
	offset := 0
	add := func(kind SegmentKind, sym baudot.Symbol, t Tone) {
		segs = append(segs, Segment{Kind: kind, Symbol: sym, Tone: t, Offset: offset})
		offset += t.Samples()
	}

	lead := s.tone(s.cfg.MarkFreq, s.cfg.LeadTone.Seconds(), 0)
	add(SegmentLead, baudot.Mark, lead)
	phase := 0.0

	full := s.cfg.SymbolDuration()
	for _, sym := range symbols {
		freq, seconds := s.cfg.MarkFreq, full
		switch sym {
		case baudot.Space:
			freq = s.cfg.SpaceFreq
		case baudot.HalfMark:
			seconds = full / 2
		}
		t := s.tone(freq, seconds, phase)
		add(SegmentData, sym, t)
		phase = t.EndPhase()
	}

	add(SegmentTrail, baudot.Mark, s.tone(s.cfg.MarkFreq, s.cfg.LeadTone.Seconds(), phase))
	add(SegmentSilence, baudot.Space, Tone{Seconds: s.cfg.TrailSilence.Seconds(), SampleRate: s.cfg.SampleRate})

	return segs
}

// SampleCount returns the exact length of the buffer Synthesize would
// produce.
func (s *Synthesizer) SampleCount(symbols []baudot.Symbol) int {
	full := s.tone(s.cfg.MarkFreq, s.cfg.SymbolDuration(), 0).Samples()
	half := s.tone(s.cfg.MarkFreq, s.cfg.SymbolDuration()/2, 0).Samples()
	lead := s.tone(s.cfg.MarkFreq, s.cfg.LeadTone.Seconds(), 0).Samples()
	pad := s.tone(0, s.cfg.TrailSilence.Seconds(), 0).Samples()

	n := 2*lead + pad
	for _, sym := range symbols {
		if sym == baudot.HalfMark {
			n += half
		} else {
			n += full
		}
	}
	return n
}

// Duration returns the playing time of the buffer for symbols.
func (s *Synthesizer) Duration(symbols []baudot.Symbol) time.Duration {
	return SamplesToDuration(s.SampleCount(symbols), s.cfg.SampleRate)
}

func (s *Synthesizer) maxSamples() int {
	return int(s.cfg.MaxDuration.Seconds() * float64(s.cfg.SampleRate))
}

// Synthesize renders symbols into a single buffer of 32-bit float samples.
// An empty symbol stream still yields the lead tone, trailing tone and
// silence. ErrBufferTooLarge is returned instead of truncating when the
// output would exceed the configured maximum duration.
func (s *Synthesizer) Synthesize(symbols []baudot.Symbol) ([]float32, error) {
	total := s.SampleCount(symbols)
	if limit := s.maxSamples(); total > limit {
		return nil, fmt.Errorf("%w: %d samples (%s) exceeds %s",
			ErrBufferTooLarge, total, SamplesToDuration(total, s.cfg.SampleRate), s.cfg.MaxDuration)
	}

	buf := make([]float32, total)
	for _, seg := range s.Segments(symbols) {
		if seg.Kind == SegmentSilence {
			continue
		}
		seg.Tone.Render(buf[seg.Offset:])
	}

	log.Debug("Synthesized AFSK signal",
		"symbols", len(symbols),
		"samples", total,
		"duration", SamplesToDuration(total, s.cfg.SampleRate),
		"size", humanize.Bytes(uint64(total*4)))

	return buf, nil
}

// SamplesToDuration converts a sample count into playing time.
func SamplesToDuration(n, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(sampleRate)
}
