package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/dgnsrekt/rtty/rtty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultConfig = `# log debug messages
debug: false

rtty:
  # Signal settings
  # symbol rate in baud
  baud_rate: 45.45
  # mark (1) and space (0) tones in Hz
  mark_freq: 1170
  space_freq: 1000
  # peak amplitude, between 0 and 1
  amplitude: 0.8
  sample_rate: 44100
  # pure mark tone sent before and after the message
  lead_tone: "200ms"
  # silence appended after the trailing tone
  trail_silence: "200ms"
  # longest signal that will be rendered
  max_duration: "10m"

  # Output settings
  # audio backend: auto, oto, portaudio, mock or wav
  backend: "auto"
  # sample format for WAV output: float32 or pcm16
  wav_format: "float32"

  # Render cache
  cache:
    enabled: true
    memory_mb: 32
    disk_mb: 256
    # defaults to the user cache directory
    # dir: "~/.cache/rtty/renders"
    # zstd level, 0 stores raw samples
    compression_level: 3
    ttl: "168h"
`

var (
	printConfig bool

	configCmd = &cobra.Command{
		Use:     "config",
		Hidden:  false,
		Short:   "Edit the rtty config file",
		Long:    paragraph(fmt.Sprintf("\n%s the rtty config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
		Example: paragraph("rtty config\nrtty config --config path/to/config.yml\nrtty config --print"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if printConfig {
				cfg, err := rtty.LoadConfigFromViper()
				if err != nil {
					return err
				}
				return writeConfigYAML(os.Stdout, cfg)
			}

			if err := ensureConfigFile(); err != nil {
				return err
			}

			c, err := editor.Cmd("RTTY", configFile)
			if err != nil {
				return fmt.Errorf("unable to set config file: %w", err)
			}
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("unable to run command: %w", err)
			}

			fmt.Println("Wrote config file to:", configFile)
			return nil
		},
	}
)

// configView is the YAML shape of the effective configuration. Durations
// are written as strings so the output can be used as a config file.
type configView struct {
	Debug bool `yaml:"debug"`
	RTTY  struct {
		BaudRate     float64 `yaml:"baud_rate"`
		MarkFreq     float64 `yaml:"mark_freq"`
		SpaceFreq    float64 `yaml:"space_freq"`
		Amplitude    float64 `yaml:"amplitude"`
		SampleRate   int     `yaml:"sample_rate"`
		LeadTone     string  `yaml:"lead_tone"`
		TrailSilence string  `yaml:"trail_silence"`
		MaxDuration  string  `yaml:"max_duration"`
		Backend      string  `yaml:"backend"`
		WAVFormat    string  `yaml:"wav_format"`
		Cache        struct {
			Enabled          bool   `yaml:"enabled"`
			MemoryMB         int    `yaml:"memory_mb"`
			DiskMB           int    `yaml:"disk_mb"`
			Dir              string `yaml:"dir,omitempty"`
			CompressionLevel int    `yaml:"compression_level"`
			TTL              string `yaml:"ttl"`
		} `yaml:"cache"`
	} `yaml:"rtty"`
}

func writeConfigYAML(w io.Writer, cfg rtty.Config) error {
	var v configView
	v.Debug = viper.GetBool("debug")
	v.RTTY.BaudRate = cfg.BaudRate
	v.RTTY.MarkFreq = cfg.MarkFreq
	v.RTTY.SpaceFreq = cfg.SpaceFreq
	v.RTTY.Amplitude = cfg.Amplitude
	v.RTTY.SampleRate = cfg.SampleRate
	v.RTTY.LeadTone = cfg.LeadTone.String()
	v.RTTY.TrailSilence = cfg.TrailSilence.String()
	v.RTTY.MaxDuration = cfg.MaxDuration.String()
	v.RTTY.Backend = cfg.Backend
	v.RTTY.WAVFormat = cfg.WAVFormat
	v.RTTY.Cache.Enabled = cfg.Cache.Enabled
	v.RTTY.Cache.MemoryMB = cfg.Cache.MemoryMB
	v.RTTY.Cache.DiskMB = cfg.Cache.DiskMB
	v.RTTY.Cache.Dir = cfg.Cache.Dir
	v.RTTY.Cache.CompressionLevel = cfg.Cache.CompressionLevel
	v.RTTY.Cache.TTL = cfg.Cache.TTL.String()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("unable to encode config: %w", err)
	}
	return enc.Close()
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&printConfig, "print", false, "print the effective configuration as YAML")
}
