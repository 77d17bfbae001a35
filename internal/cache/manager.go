package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
)

// Manager coordinates the memory and disk tiers. Hits on disk are promoted
// to memory; writes go to memory immediately and to disk in the
// background.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache

	pending sync.WaitGroup

	mu    sync.Mutex
	stats ManagerStats
}

// ManagerStats aggregates the tiers.
type ManagerStats struct {
	Hits       int64
	Misses     int64
	MemoryHits int64
	DiskHits   int64
	Promotions int64
	HitRate    float64

	Memory Stats
	Disk   Stats
}

// NewManager creates the tiers enabled in cfg. A tier with zero capacity
// is skipped; the disk tier also needs a directory.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{}

	if cfg.MemoryCapacity > 0 {
		m.memory = NewMemoryCache(cfg.MemoryCapacity)
	}

	if cfg.DiskCapacity > 0 && cfg.Dir != "" {
		dir, err := homedir.Expand(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to expand cache directory: %w", err)
		}
		m.disk, err = NewDiskCache(dir, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		if cfg.TTL > 0 {
			if n := m.disk.RemoveOlderThan(time.Now().Add(-cfg.TTL)); n > 0 {
				log.Debug("Expired cached renderings", "count", n)
			}
		}
	}

	return m, nil
}

// Get looks up key in memory, then on disk.
func (m *Manager) Get(key string) ([]float32, bool) {
	if m.memory != nil {
		if samples, ok := m.memory.Get(key); ok {
			m.record(func(s *ManagerStats) { s.MemoryHits++; s.Hits++ })
			return samples, true
		}
	}

	if m.disk != nil {
		if samples, ok := m.disk.Get(key); ok {
			m.record(func(s *ManagerStats) { s.DiskHits++; s.Hits++ })
			if m.memory != nil && m.memory.Put(key, samples) == nil {
				m.record(func(s *ManagerStats) { s.Promotions++ })
			}
			return samples, true
		}
	}

	m.record(func(s *ManagerStats) { s.Misses++ })
	return nil, false
}

// Put stores samples in every tier. Items too large for a tier are
// skipped silently.
func (m *Manager) Put(key string, samples []float32) error {
	if m.memory != nil {
		if err := m.memory.Put(key, samples); err != nil && !errors.Is(err, ErrItemTooLarge) {
			return fmt.Errorf("memory cache: %w", err)
		}
	}

	if m.disk != nil {
		m.pending.Add(1)
		go func() {
			defer m.pending.Done()
			if err := m.disk.Put(key, samples); err != nil && !errors.Is(err, ErrItemTooLarge) {
				log.Warn("Failed to write cache entry", "key", key, "error", err)
			}
		}()
	}

	return nil
}

// Delete removes key from every tier.
func (m *Manager) Delete(key string) {
	m.pending.Wait()
	if m.memory != nil {
		m.memory.Delete(key)
	}
	if m.disk != nil {
		m.disk.Delete(key)
	}
}

// Clear empties every tier.
func (m *Manager) Clear() error {
	m.pending.Wait()
	if m.memory != nil {
		m.memory.Clear()
	}
	if m.disk != nil {
		return m.disk.Clear()
	}
	return nil
}

// Flush waits for background disk writes.
func (m *Manager) Flush() {
	m.pending.Wait()
}

// Stats returns aggregated statistics from all tiers.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	stats := m.stats
	m.mu.Unlock()

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	if m.memory != nil {
		stats.Memory = m.memory.Stats()
	}
	if m.disk != nil {
		stats.Disk = m.disk.Stats()
	}
	return stats
}

// Close waits for pending writes and saves the disk index.
func (m *Manager) Close() error {
	m.pending.Wait()
	if m.disk != nil {
		if err := m.disk.Close(); err != nil {
			return fmt.Errorf("failed to close disk cache: %w", err)
		}
	}
	return nil
}

func (m *Manager) record(fn func(*ManagerStats)) {
	m.mu.Lock()
	fn(&m.stats)
	m.mu.Unlock()
}
