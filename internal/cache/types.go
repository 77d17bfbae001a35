package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgnsrekt/rtty/internal/baudot"
	"github.com/dgnsrekt/rtty/internal/fsk"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when cached data cannot be decoded
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// Level represents the cache tier
type Level int

const (
	// LevelMemory is the in-process LRU tier
	LevelMemory Level = iota
	// LevelDisk is the persistent tier
	LevelDisk
)

// String returns the string representation of the cache level
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds cache performance metrics
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) updateHitRate() {
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
}

// Metadata describes a cached rendering.
type Metadata struct {
	Key        string
	Size       int64 // bytes of sample data
	Samples    int
	Timestamp  time.Time
	LastAccess time.Time
	Hits       int64
	Level      Level
}

// Config holds configuration for the cache tiers
type Config struct {
	// MemoryCapacity is the memory tier size in bytes; 0 disables it.
	MemoryCapacity int64
	// DiskCapacity is the disk tier size in bytes; 0 disables it.
	DiskCapacity int64
	// Dir holds the disk tier files.
	Dir string
	// CompressionLevel is the zstd level (1-22); 0 stores raw samples.
	CompressionLevel int
	// TTL expires disk entries older than this on open; 0 keeps them.
	TTL time.Duration
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   32 << 20,
		DiskCapacity:     256 << 20,
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
	}
}

// Key returns the cache key for text rendered with cfg. Texts that encode
// to the same characters share a key.
func Key(text string, cfg fsk.Config) string {
	data := fmt.Sprintf("%s|%.4f|%.2f|%.2f|%.4f|%d|%s|%s",
		baudot.Normalize(text),
		cfg.BaudRate, cfg.MarkFreq, cfg.SpaceFreq, cfg.Amplitude,
		cfg.SampleRate, cfg.LeadTone, cfg.TrailSilence)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

func sampleBytes(samples []float32) int64 {
	return int64(len(samples)) * 4
}
