package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/logger"
)

// MemoryStore is an in-process core.VectorStore with exact cosine scoring.
// It stands in for Milvus in tests and offline smoke runs, and behaves the
// way the remote store does at the contract level: fixed collection
// dimension, per-point dimension validation on write, descending-score
// results truncated to the requested limit.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	dim    int
	points map[string]core.Point
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memCollection),
	}
}

var _ core.VectorStore = (*MemoryStore)(nil)

// EnsureCollection creates the collection if absent. The dimension is
// fixed at creation and never altered afterwards.
func (s *MemoryStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[collection]; !exists {
		s.collections[collection] = &memCollection{
			dim:    dim,
			points: make(map[string]core.Point),
		}
		logger.Debug("Created in-memory collection %s (dim=%d)", collection, dim)
	}
	return nil
}

// UpsertOne inserts or replaces a single point, generating an id when none
// is supplied.
func (s *MemoryStore) UpsertOne(ctx context.Context, collection string, vector []float32, payload core.Payload, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.UpsertBatch(ctx, collection, []core.Point{{ID: id, Vector: vector, Payload: payload}}); err != nil {
		return "", err
	}
	return id, nil
}

// UpsertBatch stores all points in one operation. A vector whose length
// does not match the collection dimension is rejected, as the remote
// store would reject it.
func (s *MemoryStore) UpsertBatch(ctx context.Context, collection string, points []core.Point) error {
	if len(points) == 0 {
		return nil
	}

	if err := s.EnsureCollection(ctx, collection, len(points[0].Vector)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	for _, p := range points {
		if len(p.Vector) != coll.dim {
			return fmt.Errorf("dimension mismatch in collection %s: expected %d, got %d", collection, coll.dim, len(p.Vector))
		}
	}
	for _, p := range points {
		coll.points[p.ID] = p
	}
	return nil
}

// Search scores every point by cosine similarity against the query vector
// and returns the top k in non-increasing order. An unknown or empty
// collection yields an empty slice.
func (s *MemoryStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]core.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d", k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, exists := s.collections[collection]
	if !exists {
		return []core.SearchHit{}, nil
	}

	hits := make([]core.SearchHit, 0, len(coll.points))
	for _, p := range coll.points {
		hits = append(hits, core.SearchHit{
			ID:      p.ID,
			Score:   cosineSimilarity(vector, p.Vector),
			Payload: p.Payload,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// cosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. A zero-magnitude vector scores 0 against everything.
func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
