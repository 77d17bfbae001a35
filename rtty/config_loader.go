package rtty

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads the transmitter configuration from the rtty.*
// keys in Viper, starting from the defaults.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	// Signal settings
	if viper.IsSet("rtty.baud_rate") {
		cfg.BaudRate = viper.GetFloat64("rtty.baud_rate")
	}
	if viper.IsSet("rtty.mark_freq") {
		cfg.MarkFreq = viper.GetFloat64("rtty.mark_freq")
	}
	if viper.IsSet("rtty.space_freq") {
		cfg.SpaceFreq = viper.GetFloat64("rtty.space_freq")
	}
	if viper.IsSet("rtty.amplitude") {
		cfg.Amplitude = viper.GetFloat64("rtty.amplitude")
	}
	if viper.IsSet("rtty.sample_rate") {
		cfg.SampleRate = viper.GetInt("rtty.sample_rate")
	}
	if viper.IsSet("rtty.lead_tone") {
		cfg.LeadTone = viper.GetDuration("rtty.lead_tone")
	}
	if viper.IsSet("rtty.trail_silence") {
		cfg.TrailSilence = viper.GetDuration("rtty.trail_silence")
	}
	if viper.IsSet("rtty.max_duration") {
		cfg.MaxDuration = viper.GetDuration("rtty.max_duration")
	}

	// Output settings
	if viper.IsSet("rtty.backend") {
		cfg.Backend = viper.GetString("rtty.backend")
	}
	if viper.IsSet("rtty.wav_format") {
		cfg.WAVFormat = viper.GetString("rtty.wav_format")
	}

	cache, err := loadCacheConfig()
	if err != nil {
		return cfg, err
	}
	cfg.Cache = cache

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid rtty configuration: %w", err)
	}

	return cfg, nil
}

// loadCacheConfig loads the render cache settings from Viper.
func loadCacheConfig() (CacheConfig, error) {
	cfg := DefaultCacheConfig()

	if viper.IsSet("rtty.cache.enabled") {
		cfg.Enabled = viper.GetBool("rtty.cache.enabled")
	}
	if viper.IsSet("rtty.cache.memory_mb") {
		cfg.MemoryMB = viper.GetInt("rtty.cache.memory_mb")
	}
	if viper.IsSet("rtty.cache.disk_mb") {
		cfg.DiskMB = viper.GetInt("rtty.cache.disk_mb")
	}
	if viper.IsSet("rtty.cache.dir") {
		dir, err := homedir.Expand(viper.GetString("rtty.cache.dir"))
		if err != nil {
			return cfg, fmt.Errorf("invalid cache dir: %w", err)
		}
		cfg.Dir = dir
	}
	if viper.IsSet("rtty.cache.compression_level") {
		cfg.CompressionLevel = viper.GetInt("rtty.cache.compression_level")
	}
	if viper.IsSet("rtty.cache.ttl") {
		cfg.TTL = viper.GetDuration("rtty.cache.ttl")
	}

	return cfg, nil
}

// SetDefaults sets default values in Viper for the transmitter
// configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("rtty.baud_rate", defaults.BaudRate)
	viper.SetDefault("rtty.mark_freq", defaults.MarkFreq)
	viper.SetDefault("rtty.space_freq", defaults.SpaceFreq)
	viper.SetDefault("rtty.amplitude", defaults.Amplitude)
	viper.SetDefault("rtty.sample_rate", defaults.SampleRate)
	viper.SetDefault("rtty.lead_tone", defaults.LeadTone.String())
	viper.SetDefault("rtty.trail_silence", defaults.TrailSilence.String())
	viper.SetDefault("rtty.max_duration", defaults.MaxDuration.String())

	viper.SetDefault("rtty.backend", defaults.Backend)
	viper.SetDefault("rtty.wav_format", defaults.WAVFormat)

	viper.SetDefault("rtty.cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("rtty.cache.memory_mb", defaults.Cache.MemoryMB)
	viper.SetDefault("rtty.cache.disk_mb", defaults.Cache.DiskMB)
	viper.SetDefault("rtty.cache.compression_level", defaults.Cache.CompressionLevel)
	viper.SetDefault("rtty.cache.ttl", defaults.Cache.TTL.String())
}
