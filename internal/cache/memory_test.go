package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// samplesOf returns n samples, 4n bytes.
func samplesOf(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(1024)

	key := "test-key"
	value := samplesOf(10, 0.5)

	if err := cache.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	retrieved, ok := cache.Get(key)
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if len(retrieved) != len(value) || retrieved[0] != 0.5 {
		t.Errorf("Retrieved value mismatch: got %v", retrieved)
	}

	if !cache.Contains(key) {
		t.Error("Contains returned false for existing key")
	}
	if cache.Size() != 40 {
		t.Errorf("Size mismatch: got %d, want 40", cache.Size())
	}

	cache.Delete(key)
	if cache.Contains(key) {
		t.Error("Key still exists after delete")
	}
	if cache.Size() != 0 {
		t.Errorf("Size not zero after delete: %d", cache.Size())
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	cache := NewMemoryCache(100) // 25 samples

	for i := 0; i < 5; i++ {
		if err := cache.Put(fmt.Sprintf("key-%d", i), samplesOf(5, 0)); err != nil {
			t.Fatalf("Put failed for key-%d: %v", i, err)
		}
	}

	// Touch key-0 and key-1 so key-2 becomes the oldest.
	cache.Get("key-0")
	cache.Get("key-1")

	if err := cache.Put("key-new", samplesOf(7, 0)); err != nil {
		t.Fatalf("Put failed for new key: %v", err)
	}

	if cache.Contains("key-2") || cache.Contains("key-3") {
		t.Error("key-2 and key-3 should have been evicted")
	}
	for _, k := range []string{"key-0", "key-1", "key-4", "key-new"} {
		if !cache.Contains(k) {
			t.Errorf("%s should not have been evicted", k)
		}
	}
	if s := cache.Stats(); s.Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", s.Evictions)
	}
}

func TestMemoryCache_ItemTooLarge(t *testing.T) {
	cache := NewMemoryCache(100)

	if err := cache.Put("large-key", samplesOf(26, 0)); err != ErrItemTooLarge {
		t.Errorf("Expected ErrItemTooLarge, got %v", err)
	}
}

func TestMemoryCache_UpdateExisting(t *testing.T) {
	cache := NewMemoryCache(1024)

	cache.Put("k", samplesOf(4, 0.1))
	cache.Put("k", samplesOf(8, 0.2))

	got, _ := cache.Get("k")
	if len(got) != 8 || got[0] != 0.2 {
		t.Errorf("update not applied: %v", got)
	}
	if cache.Size() != 32 {
		t.Errorf("Size = %d, want 32", cache.Size())
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(1024)
	cache.Put("a", samplesOf(1, 0))

	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	s := cache.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.ItemCount != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	if s.HitRate < 0.66 || s.HitRate > 0.67 {
		t.Errorf("HitRate = %f, want 2/3", s.HitRate)
	}
}

func TestMemoryCache_ResizeAndPrune(t *testing.T) {
	cache := NewMemoryCache(1024)
	for i := 0; i < 4; i++ {
		cache.Put(fmt.Sprintf("k%d", i), samplesOf(10, 0))
	}

	cache.Resize(80)
	if cache.Size() > 80 {
		t.Errorf("Size %d exceeds new capacity", cache.Size())
	}

	time.Sleep(5 * time.Millisecond)
	if n := cache.Prune(time.Millisecond); n != 2 {
		t.Errorf("Prune removed %d, want 2", n)
	}
	if cache.Size() != 0 {
		t.Errorf("Size = %d after prune, want 0", cache.Size())
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(4096)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("g%d-%d", g, i%10)
				cache.Put(key, samplesOf(8, float32(g)))
				cache.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if cache.Size() > 4096 {
		t.Errorf("Size %d exceeds capacity", cache.Size())
	}
}
