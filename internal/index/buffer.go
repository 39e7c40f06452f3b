package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/logger"
)

// Buffer accumulates per-collection batches of points in memory and
// commits them with a single bulk upsert per flush, amortizing round-trips
// to the index store. Flush cadence is the caller's decision; the buffer
// never flushes on its own.
type Buffer struct {
	store core.VectorStore

	mu      sync.Mutex
	pending map[string][]core.Point
}

// NewBuffer creates a buffer that flushes into the given store.
func NewBuffer(store core.VectorStore) *Buffer {
	return &Buffer{
		store:   store,
		pending: make(map[string][]core.Point),
	}
}

// Add generates a fresh id and appends the point to the collection's
// pending list. No network call is made.
func (b *Buffer) Add(collection string, vector []float32, payload core.Payload) string {
	id := uuid.NewString()

	b.mu.Lock()
	b.pending[collection] = append(b.pending[collection], core.Point{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	})
	b.mu.Unlock()

	return id
}

// Pending returns the number of points buffered for the collection.
func (b *Buffer) Pending(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending[collection])
}

// Flush commits all pending points for the collection in one bulk upsert.
// An empty pending list is a no-op. The pending slice is swapped for a
// fresh one before the write, so concurrent Adds land in the new list; on
// failure the swapped-out points are merged back to the front of the live
// list and the error is returned, giving at-least-once delivery on retry.
func (b *Buffer) Flush(ctx context.Context, collection string) error {
	b.mu.Lock()
	batch := b.pending[collection]
	if len(batch) == 0 {
		b.mu.Unlock()
		return nil
	}
	delete(b.pending, collection)
	b.mu.Unlock()

	if err := b.store.UpsertBatch(ctx, collection, batch); err != nil {
		b.mu.Lock()
		b.pending[collection] = append(batch, b.pending[collection]...)
		b.mu.Unlock()
		return fmt.Errorf("failed to flush %d points to %s: %w", len(batch), collection, err)
	}

	logger.Debug("Flushed %d points to %s", len(batch), collection)
	return nil
}
