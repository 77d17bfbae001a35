package fsk

import "math"

// Tone describes a sine burst at a fixed frequency starting at a given
// phase.
type Tone struct {
	Freq       float64
	Seconds    float64
	Phase      float64
	Amplitude  float64
	SampleRate int
}

// Samples returns the number of samples the tone occupies. Fractional
// samples are truncated.
func (t Tone) Samples() int {
	if t.Seconds <= 0 || t.SampleRate <= 0 {
		return 0
	}
	return int(float64(t.SampleRate) * t.Seconds)
}

// Render writes the tone into dst and returns the number of samples
// written. Sample i sits at time i*Seconds/n, so the n samples span the
// whole duration without its end point.
func (t Tone) Render(dst []float32) int {
	n := min(t.Samples(), len(dst))
	if n == 0 {
		return 0
	}

	step := t.Seconds / float64(t.Samples())
	w := 2 * math.Pi * t.Freq
	for i := 0; i < n; i++ {
		dst[i] = float32(t.Amplitude * math.Sin(w*float64(i)*step+t.Phase))
	}
	return n
}

// New allocates and renders the tone.
func (t Tone) New() []float32 {
	out := make([]float32, t.Samples())
	t.Render(out)
	return out
}

// EndPhase returns the phase following the tone, wrapped into [0, 2π).
func (t Tone) EndPhase() float64 {
	return WrapPhase(t.Phase + 2*math.Pi*t.Freq*t.Seconds)
}

// WrapPhase folds p into [0, 2π).
func WrapPhase(p float64) float64 {
	p = math.Mod(p, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	return p
}

// Silence returns zero-valued samples lasting the given number of seconds.
func Silence(seconds float64, sampleRate int) []float32 {
	return make([]float32, Tone{Seconds: seconds, SampleRate: sampleRate}.Samples())
}
