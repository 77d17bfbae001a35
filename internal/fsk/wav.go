package fsk

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// WAVFormat selects the sample encoding of a WAV file.
type WAVFormat int

const (
	// WAVFloat32 writes IEEE float samples, the synthesizer's native format.
	WAVFloat32 WAVFormat = iota
	// WAVPCM16 writes signed 16-bit integer samples.
	WAVPCM16
)

const (
	wavTagPCM   = 1
	wavTagFloat = 3
)

// PCMFormat returns the byte layout of the WAV data chunk.
func (f WAVFormat) PCMFormat(sampleRate int) PCMFormat {
	if f == WAVPCM16 {
		return Int16Format(sampleRate)
	}
	return Float32Format(sampleRate)
}

// String returns the format name used on the command line.
func (f WAVFormat) String() string {
	if f == WAVPCM16 {
		return "pcm16"
	}
	return "float32"
}

// WriteWAV writes samples as a mono RIFF/WAVE file.
func WriteWAV(w io.Writer, samples []float32, sampleRate int, format WAVFormat) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, sampleRate)
	}

	pcm := format.PCMFormat(sampleRate)
	data := pcm.Encode(samples)
	if err := ValidatePCMData(data, pcm); err != nil {
		return err
	}
	blockAlign := pcm.BytesPerSample()

	// Float data needs the extended fmt chunk and a fact chunk.
	fmtSize, tag, extra := uint32(16), uint16(wavTagPCM), 0
	if pcm.IsFloat {
		fmtSize, tag, extra = 18, wavTagFloat, 12
	}
	riffSize := 4 + (8 + fmtSize) + uint32(extra) + 8 + uint32(len(data))

	bw := bufio.NewWriter(w)
	le := binary.LittleEndian
	fields := []any{
		[4]byte{'R', 'I', 'F', 'F'}, riffSize, [4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '}, fmtSize,
		tag,
		uint16(pcm.Channels),
		uint32(sampleRate),
		uint32(sampleRate * blockAlign),
		uint16(blockAlign),
		uint16(pcm.BitDepth),
	}
	if pcm.IsFloat {
		fields = append(fields,
			uint16(0),
			[4]byte{'f', 'a', 'c', 't'}, uint32(4), uint32(len(samples)))
	}
	fields = append(fields, [4]byte{'d', 'a', 't', 'a'}, uint32(len(data)))

	for _, f := range fields {
		if err := binary.Write(bw, le, f); err != nil {
			return fmt.Errorf("failed to write WAV header: %w", err)
		}
	}
	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	return bw.Flush()
}
