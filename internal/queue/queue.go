package queue

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrQueueFull is returned when the queue is at capacity
	ErrQueueFull = errors.New("queue is full")

	// ErrQueueClosed is returned when operations are attempted on a closed queue
	ErrQueueClosed = errors.New("queue is closed")

	// ErrQueueEmpty is returned by tryDequeue and peek when nothing is waiting
	ErrQueueEmpty = errors.New("queue is empty")
)

// Priority orders waiting items. Higher values leave first.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

// Item is one text waiting for the transmitter.
type Item struct {
	Text     string
	Priority Priority
	Queued   time.Time

	seq int64
}

// Policy decides what happens when Enqueue finds the queue full.
type Policy int

const (
	// Reject returns ErrQueueFull.
	Reject Policy = iota
	// DropOldest discards the oldest item of the lowest priority.
	DropOldest
)

// Stats tracks queue performance metrics
type Stats struct {
	TotalEnqueued int64
	TotalDequeued int64
	TotalDropped  int64
	CurrentSize   int
	PeakSize      int
	LastEnqueue   time.Time
	LastDequeue   time.Time
	TotalWait     time.Duration
}

// AverageWait is the mean time an item spent in the queue.
func (s Stats) AverageWait() time.Duration {
	if s.TotalDequeued == 0 {
		return 0
	}
	return s.TotalWait / time.Duration(s.TotalDequeued)
}

// TextQueue is a bounded, thread-safe queue of pending transmissions.
type TextQueue struct {
	items   itemHeap
	maxSize int
	policy  Policy
	seq     int64

	mu       sync.Mutex
	notEmpty *sync.Cond

	closed bool
	stats  Stats
}

// New creates a queue holding at most maxSize items. A maxSize below one
// is raised to one.
func New(maxSize int, policy Policy) *TextQueue {
	if maxSize < 1 {
		maxSize = 1
	}
	q := &TextQueue{
		items:   make(itemHeap, 0, maxSize),
		maxSize: maxSize,
		policy:  policy,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds text to the queue.
func (q *TextQueue) Enqueue(text string, priority Priority) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	if len(q.items) >= q.maxSize {
		if q.policy == Reject {
			q.stats.TotalDropped++
			return ErrQueueFull
		}
		victim := q.oldestLowest()
		if q.items[victim].Priority > priority {
			// Everything waiting outranks the newcomer.
			q.stats.TotalDropped++
			return ErrQueueFull
		}
		dropped := heap.Remove(&q.items, victim).(*Item)
		q.stats.TotalDropped++
		log.Debug("Dropped queued text", "chars", len([]rune(dropped.Text)), "waited", time.Since(dropped.Queued))
	}

	q.seq++
	now := time.Now()
	heap.Push(&q.items, &Item{Text: text, Priority: priority, Queued: now, seq: q.seq})

	q.stats.TotalEnqueued++
	q.stats.LastEnqueue = now
	if len(q.items) > q.stats.PeakSize {
		q.stats.PeakSize = len(q.items)
	}

	q.notEmpty.Signal()
	return nil
}

func (q *TextQueue) oldestLowest() int {
	idx := 0
	for i, it := range q.items {
		best := q.items[idx]
		if it.Priority < best.Priority || (it.Priority == best.Priority && it.seq < best.seq) {
			idx = i
		}
	}
	return idx
}

// Dequeue blocks until an item is available, the queue is closed or ctx
// is done.
func (q *TextQueue) Dequeue(ctx context.Context) (Item, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed && ctx.Err() == nil {
		q.notEmpty.Wait()
	}

	if q.closed {
		return Item{}, ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	return q.pop(), nil
}

// tryDequeue returns the next item without blocking.
func (q *TextQueue) tryDequeue() (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Item{}, ErrQueueClosed
	}
	if len(q.items) == 0 {
		return Item{}, ErrQueueEmpty
	}
	return q.pop(), nil
}

func (q *TextQueue) pop() Item {
	it := heap.Pop(&q.items).(*Item)
	now := time.Now()
	q.stats.TotalDequeued++
	q.stats.LastDequeue = now
	q.stats.TotalWait += now.Sub(it.Queued)
	return *it
}

// peek returns the next item without removing it.
func (q *TextQueue) peek() (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Item{}, ErrQueueClosed
	}
	if len(q.items) == 0 {
		return Item{}, ErrQueueEmpty
	}
	return *q.items[0], nil
}

// Size returns the number of waiting items.
func (q *TextQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops everything that is waiting and returns how many items were
// removed.
func (q *TextQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	q.items = q.items[:0]
	q.stats.TotalDropped += int64(n)
	return n
}

// Stats returns current queue statistics.
func (q *TextQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := q.stats
	stats.CurrentSize = len(q.items)
	return stats
}

// Close wakes every waiter. Items still waiting are discarded.
func (q *TextQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	q.notEmpty.Broadcast()
	return nil
}

// itemHeap implements heap.Interface: higher priority first, then FIFO.
type itemHeap []*Item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) { *h = append(*h, x.(*Item)) }

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
