package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/klauspost/compress/zstd"
)

const indexFile = "cache.index"

// DiskCache is the persistent tier. Samples are stored as little-endian
// float32, zstd-compressed when a compression level is set.
type DiskCache struct {
	basePath string
	capacity int64 // bytes on disk
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

// diskEntry is persisted in the index with gob.
type diskEntry struct {
	Key        string
	File       string // relative to basePath
	Size       int64  // on disk
	Samples    int
	Timestamp  time.Time
	LastAccess time.Time
	Hits       int64
	Compressed bool
}

// NewDiskCache opens or creates a disk cache in basePath.
func NewDiskCache(basePath string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		basePath: basePath,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		dc.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
	}

	if err := dc.loadIndex(); err != nil {
		log.Warn("Discarding unreadable cache index", "path", basePath, "error", err)
		dc.index = make(map[string]*diskEntry)
	}
	for _, e := range dc.index {
		dc.size += e.Size
	}

	return dc, nil
}

// Get reads the samples stored under key. Missing or corrupted files are
// dropped from the index and reported as a miss.
func (dc *DiskCache) Get(key string) ([]float32, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	samples, err := dc.read(entry)
	if err != nil {
		log.Debug("Dropping cache entry", "key", key, "error", err)
		dc.removeEntry(entry)
		dc.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.Hits++
	dc.stats.Hits++
	dc.stats.LastAccess = entry.LastAccess
	return samples, true
}

func (dc *DiskCache) read(entry *diskEntry) ([]float32, error) {
	data, err := os.ReadFile(filepath.Join(dc.basePath, entry.File))
	if err != nil {
		return nil, err
	}
	if entry.Compressed {
		if dc.decoder == nil {
			return nil, fmt.Errorf("%w: compressed entry without decoder", ErrCacheCorrupted)
		}
		if data, err = dc.decoder.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCacheCorrupted, err)
		}
	}
	if len(data) != 4*entry.Samples {
		return nil, fmt.Errorf("%w: %d bytes for %d samples", ErrCacheCorrupted, len(data), entry.Samples)
	}
	return fsk.DecodeFloat32LE(data), nil
}

// Put writes samples to disk under key.
func (dc *DiskCache) Put(key string, samples []float32) error {
	data := fsk.Float32LE(samples)
	compressed := false
	if dc.encoder != nil {
		if packed := dc.encoder.EncodeAll(data, nil); len(packed) < len(data) {
			data, compressed = packed, true
		}
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	size := int64(len(data))
	if size > dc.capacity {
		return ErrItemTooLarge
	}
	if existing, ok := dc.index[key]; ok {
		dc.removeEntry(existing)
	}
	for dc.size+size > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	entry := &diskEntry{
		Key:        key,
		File:       key + ".f32",
		Size:       size,
		Samples:    len(samples),
		Timestamp:  time.Now(),
		Compressed: compressed,
	}
	entry.LastAccess = entry.Timestamp
	if compressed {
		entry.File += ".zst"
	}

	if err := writeFileAtomic(filepath.Join(dc.basePath, entry.File), data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	dc.index[key] = entry
	dc.size += size
	return nil
}

// Delete removes an entry from the disk cache.
func (dc *DiskCache) Delete(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, ok := dc.index[key]; ok {
		dc.removeEntry(entry)
	}
}

// Clear removes every cached file.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for _, entry := range dc.index {
		dc.removeEntry(entry)
	}
	return dc.saveIndex()
}

// Contains checks if a key exists without touching the file.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	_, ok := dc.index[key]
	return ok
}

// Size returns the bytes used on disk.
func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.size
}

// Stats returns cache statistics.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	stats := dc.stats
	stats.Size = dc.size
	stats.ItemCount = int64(len(dc.index))
	stats.updateHitRate()
	return stats
}

// Entries returns metadata for every entry, least recently used first.
func (dc *DiskCache) Entries() []Metadata {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	out := make([]Metadata, 0, len(dc.index))
	for _, e := range dc.index {
		out = append(out, Metadata{
			Key:        e.Key,
			Size:       e.Size,
			Samples:    e.Samples,
			Timestamp:  e.Timestamp,
			LastAccess: e.LastAccess,
			Hits:       e.Hits,
			Level:      LevelDisk,
		})
	}
	slices.SortFunc(out, func(a, b Metadata) int {
		return a.LastAccess.Compare(b.LastAccess)
	})
	return out
}

// RemoveOlderThan removes entries stored before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for _, entry := range dc.index {
		if entry.Timestamp.Before(cutoff) {
			dc.removeEntry(entry)
			removed++
		}
	}
	return removed
}

// Close saves the index.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.encoder != nil {
		_ = dc.encoder.Close()
	}
	if dc.decoder != nil {
		dc.decoder.Close()
	}
	return dc.saveIndex()
}

// removeEntry must be called with the lock held.
func (dc *DiskCache) removeEntry(entry *diskEntry) {
	_ = os.Remove(filepath.Join(dc.basePath, entry.File))
	delete(dc.index, entry.Key)
	dc.size -= entry.Size
}

// evictOldest must be called with the lock held.
func (dc *DiskCache) evictOldest() {
	var oldest *diskEntry
	for _, e := range dc.index {
		if oldest == nil || e.LastAccess.Before(oldest.LastAccess) {
			oldest = e
		}
	}
	if oldest != nil {
		dc.removeEntry(oldest)
		dc.stats.Evictions++
		dc.stats.LastEvict = time.Now()
	}
}

func (dc *DiskCache) loadIndex() error {
	file, err := os.Open(filepath.Join(dc.basePath, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	return gob.NewDecoder(file).Decode(&dc.index)
}

func (dc *DiskCache) saveIndex() error {
	path := filepath.Join(dc.basePath, indexFile)
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(file).Encode(dc.index)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// writeFileAtomic writes to a temp file first, then renames.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
