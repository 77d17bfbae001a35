package rtty

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgnsrekt/rtty/internal/audio"
	"github.com/dgnsrekt/rtty/internal/cache"
	"github.com/dgnsrekt/rtty/internal/fsk"
)

// Config contains all transmitter configuration options.
type Config struct {
	// Signal settings
	BaudRate     float64       `yaml:"baud_rate" mapstructure:"baud_rate" env:"RTTY_BAUD_RATE" envDefault:"45.45"`
	MarkFreq     float64       `yaml:"mark_freq" mapstructure:"mark_freq" env:"RTTY_MARK_FREQ" envDefault:"1170"`
	SpaceFreq    float64       `yaml:"space_freq" mapstructure:"space_freq" env:"RTTY_SPACE_FREQ" envDefault:"1000"`
	Amplitude    float64       `yaml:"amplitude" mapstructure:"amplitude" env:"RTTY_AMPLITUDE" envDefault:"0.8"`
	SampleRate   int           `yaml:"sample_rate" mapstructure:"sample_rate" env:"RTTY_SAMPLE_RATE" envDefault:"44100"`
	LeadTone     time.Duration `yaml:"lead_tone" mapstructure:"lead_tone" env:"RTTY_LEAD_TONE" envDefault:"200ms"`
	TrailSilence time.Duration `yaml:"trail_silence" mapstructure:"trail_silence" env:"RTTY_TRAIL_SILENCE" envDefault:"200ms"`
	MaxDuration  time.Duration `yaml:"max_duration" mapstructure:"max_duration" env:"RTTY_MAX_DURATION" envDefault:"10m"`

	// Output settings
	Backend   string `yaml:"backend" mapstructure:"backend" env:"RTTY_BACKEND" envDefault:"auto"`
	WAVFormat string `yaml:"wav_format" mapstructure:"wav_format" env:"RTTY_WAV_FORMAT" envDefault:"float32"`

	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`
}

// CacheConfig controls the render cache.
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled" env:"RTTY_CACHE_ENABLED" envDefault:"true"`
	MemoryMB         int           `yaml:"memory_mb" mapstructure:"memory_mb" env:"RTTY_CACHE_MEMORY_MB" envDefault:"32"`
	DiskMB           int           `yaml:"disk_mb" mapstructure:"disk_mb" env:"RTTY_CACHE_DISK_MB" envDefault:"256"`
	Dir              string        `yaml:"dir" mapstructure:"dir" env:"RTTY_CACHE_DIR"`
	CompressionLevel int           `yaml:"compression_level" mapstructure:"compression_level" env:"RTTY_CACHE_COMPRESSION_LEVEL" envDefault:"3"`
	TTL              time.Duration `yaml:"ttl" mapstructure:"ttl" env:"RTTY_CACHE_TTL" envDefault:"168h"`
}

// DefaultConfig returns the standard 45.45 Bd / 170 Hz shift setup.
func DefaultConfig() Config {
	synth := fsk.DefaultConfig()
	return Config{
		BaudRate:     synth.BaudRate,
		MarkFreq:     synth.MarkFreq,
		SpaceFreq:    synth.SpaceFreq,
		Amplitude:    synth.Amplitude,
		SampleRate:   synth.SampleRate,
		LeadTone:     synth.LeadTone,
		TrailSilence: synth.TrailSilence,
		MaxDuration:  synth.MaxDuration,

		Backend:   audio.BackendAuto,
		WAVFormat: fsk.WAVFloat32.String(),

		Cache: DefaultCacheConfig(),
	}
}

// DefaultCacheConfig returns the default render cache settings. Dir is
// filled in by the caller from the user cache directory.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:          true,
		MemoryMB:         32,
		DiskMB:           256,
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Synth().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if !slices.Contains(audio.Backends, c.Backend) {
		return fmt.Errorf("%w: invalid backend %q: must be one of %v", ErrInvalidConfig, c.Backend, audio.Backends)
	}

	if _, err := ParseWAVFormat(c.WAVFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("%w: cache: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the cache settings.
func (c *CacheConfig) Validate() error {
	var errs []error
	if c.MemoryMB < 0 {
		errs = append(errs, fmt.Errorf("memory_mb cannot be negative, got %d", c.MemoryMB))
	}
	if c.DiskMB < 0 {
		errs = append(errs, fmt.Errorf("disk_mb cannot be negative, got %d", c.DiskMB))
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		errs = append(errs, fmt.Errorf("compression_level must be between 0 and 22, got %d", c.CompressionLevel))
	}
	return errors.Join(errs...)
}

// Synth converts the signal settings to the synthesizer configuration.
func (c Config) Synth() fsk.Config {
	return fsk.Config{
		BaudRate:     c.BaudRate,
		MarkFreq:     c.MarkFreq,
		SpaceFreq:    c.SpaceFreq,
		Amplitude:    c.Amplitude,
		SampleRate:   c.SampleRate,
		LeadTone:     c.LeadTone,
		TrailSilence: c.TrailSilence,
		MaxDuration:  c.MaxDuration,
	}
}

// CacheManagerConfig converts the cache settings for cache.NewManager.
func (c CacheConfig) CacheManagerConfig() cache.Config {
	return cache.Config{
		MemoryCapacity:   int64(c.MemoryMB) << 20,
		DiskCapacity:     int64(c.DiskMB) << 20,
		Dir:              c.Dir,
		CompressionLevel: c.CompressionLevel,
		TTL:              c.TTL,
	}
}

// ParseWAVFormat maps "float32" or "pcm16" to a WAV sample format.
func ParseWAVFormat(s string) (fsk.WAVFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "float32", "float":
		return fsk.WAVFloat32, nil
	case "pcm16", "int16", "s16":
		return fsk.WAVPCM16, nil
	default:
		return 0, fmt.Errorf("invalid wav format %q: must be float32 or pcm16", s)
	}
}
