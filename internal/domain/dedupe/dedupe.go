// Package dedupe tracks which payout keys have already been applied in this process.
package dedupe

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxSize bounds the number of remembered keys.
const DefaultMaxSize = 50000

// Deduper records seen payout keys to ensure at-most-once application.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so a failed payout can be retried by a later run.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// lruDeduper keeps the most recently recorded keys; the oldest is evicted first.
type lruDeduper struct {
	maxSize int
	cache   *lru.Cache[string, struct{}]
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) (Deduper, error) {
	d := &lruDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	c, err := lru.New[string, struct{}](d.maxSize)
	if err != nil {
		return nil, fmt.Errorf("dedupe.NewInMemoryDeduper: %w", err)
	}
	d.cache = c
	return d, nil
}

// SeenAndRecord implements Deduper.
func (d *lruDeduper) SeenAndRecord(_ context.Context, key string) bool {
	seen, _ := d.cache.ContainsOrAdd(key, struct{}{})
	return seen
}

// Unrecord implements Deduper.
func (d *lruDeduper) Unrecord(_ context.Context, key string) {
	d.cache.Remove(key)
}

// Size returns the current number of remembered keys.
func (d *lruDeduper) Size() int64 {
	return int64(d.cache.Len())
}
