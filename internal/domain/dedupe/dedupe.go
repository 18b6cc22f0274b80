// Package dedupe tracks keys that were already acknowledged so repeated
// triggers of the same action are reported instead of counted twice.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 10_000

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

// inMemoryDeduper keeps at most maxSize keys. When full, the oldest key is
// evicted. Keys live in a ring that is overwritten in insertion order.
type inMemoryDeduper struct {
	mu      sync.Mutex
	slot    map[string]int // key -> ring index
	ring    []string       // "" marks a slot not yet used
	next    int            // ring index of the oldest slot
	live    int
	maxSize int
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxSize <= 0 {
		d.maxSize = defaultMaxSize
	}
	d.slot = make(map[string]int, d.maxSize)
	d.ring = make([]string, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.slot[key]; ok {
		return true
	}

	// Advance to the next slot; whatever lives there is the oldest key.
	i := d.next
	if old := d.ring[i]; old != "" {
		delete(d.slot, old)
		d.live--
	}
	d.ring[i] = key
	d.slot[key] = i
	d.live++
	d.next = (i + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.live)
}

// Key joins the parts of a composite dedupe key.
func Key(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, 0x1f)
		}
		b = append(b, p...)
	}
	return string(b)
}
