package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/baudot"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/dgnsrekt/rtty/rtty"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	wavOutput string
	wavPCM16  bool

	wavCmd = &cobra.Command{
		Use:     "wav TEXT",
		Short:   "Render text to a WAV file",
		Long:    paragraph("\n" + keyword("Render") + " the RTTY signal for TEXT into a mono WAV file without playing it."),
		Example: paragraph("rtty wav -o cq.wav CQ CQ DE R1ABC\nrtty wav --pcm16 -o - RYRYRY > ry.wav"),
		Args:    cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			text, err := readText(args)
			if err != nil {
				return err
			}
			return renderWAV(text, wavOutput, wavPCM16)
		},
	}
)

func renderWAV(text, output string, pcm16 bool) error {
	if output == "" {
		return errors.New("missing output file: use -o")
	}

	cfg, err := rtty.LoadConfigFromViper()
	if err != nil {
		return err
	}
	format, err := rtty.ParseWAVFormat(cfg.WAVFormat)
	if err != nil {
		return err
	}
	if pcm16 {
		format = fsk.WAVPCM16
	}

	synth, err := fsk.New(cfg.Synth())
	if err != nil {
		return err
	}
	symbols := baudot.Encode(text)
	if len(symbols) == 0 {
		return errors.New("nothing to send")
	}
	samples, err := synth.Synthesize(symbols)
	if err != nil {
		return err
	}

	if output == "-" {
		return fsk.WriteWAV(os.Stdout, samples, synth.Config().SampleRate, format)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("unable to create directory: %w", err)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("unable to create wav file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := fsk.WriteWAV(f, samples, synth.Config().SampleRate, format); err != nil {
		return fmt.Errorf("unable to write wav file: %w", err)
	}

	pcm := format.PCMFormat(cfg.SampleRate)
	bytes := int64(len(samples)) * int64(pcm.BytesPerSample())
	duration := fsk.CalculatePCMDuration(int(bytes), pcm)
	log.Info("Wrote WAV file", "path", output, "format", format, "size", humanize.Bytes(uint64(bytes))) //nolint:gosec
	fmt.Fprintf(os.Stderr, "Wrote %s: %s, %s, %s\n", output, format, duration, humanize.Bytes(uint64(bytes))) //nolint:gosec
	return nil
}

func init() {
	wavCmd.Flags().StringVarP(&wavOutput, "output", "o", "", "output file, - for stdout")
	wavCmd.Flags().BoolVar(&wavPCM16, "pcm16", false, "write 16-bit PCM instead of float samples")
}
