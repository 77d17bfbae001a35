package fsk

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Channels is fixed: RTTY audio is mono.
const Channels = 1

// PCMFormat describes an interleaved PCM byte layout.
type PCMFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
	ByteOrder  binary.ByteOrder
	IsFloat    bool
}

// Float32Format returns the native output format of the synthesizer.
func Float32Format(sampleRate int) PCMFormat {
	return PCMFormat{
		SampleRate: sampleRate,
		Channels:   Channels,
		BitDepth:   32,
		ByteOrder:  binary.LittleEndian,
		IsFloat:    true,
	}
}

// Int16Format returns signed 16-bit little-endian mono.
func Int16Format(sampleRate int) PCMFormat {
	return PCMFormat{
		SampleRate: sampleRate,
		Channels:   Channels,
		BitDepth:   16,
		ByteOrder:  binary.LittleEndian,
	}
}

// BytesPerSample returns the size of one frame.
func (f PCMFormat) BytesPerSample() int {
	return f.BitDepth / 8 * f.Channels
}

// Encode converts samples into bytes in this format.
func (f PCMFormat) Encode(samples []float32) []byte {
	if f.IsFloat {
		return Float32LE(samples)
	}
	return Int16LE(samples)
}

// ValidatePCMData checks that data is non-empty and frame aligned.
func ValidatePCMData(data []byte, format PCMFormat) error {
	if len(data) == 0 {
		return ErrEmptyPCM
	}
	if n := format.BytesPerSample(); n == 0 || len(data)%n != 0 {
		return fmt.Errorf("%w: length %d is not aligned to %d-byte samples", ErrEmptyPCM, len(data), n)
	}
	return nil
}

// Float32LE packs samples as IEEE-754 little-endian floats.
func Float32LE(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
	return out
}

// DecodeFloat32LE is the inverse of Float32LE. Trailing partial samples
// are ignored.
func DecodeFloat32LE(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out
}

// Int16LE converts samples to signed 16-bit little-endian, clamping to
// [-1, 1] first.
func Int16LE(samples []float32) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		v := max(-1, min(1, float64(s)))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(math.Round(v*math.MaxInt16))))
	}
	return out
}

// CalculatePCMDuration returns the playing time of encoded PCM bytes.
func CalculatePCMDuration(dataLen int, format PCMFormat) time.Duration {
	if format.BytesPerSample() == 0 {
		return 0
	}
	return SamplesToDuration(dataLen/format.BytesPerSample(), format.SampleRate)
}
