package core

import "context"

// EmbedService maps text into the dense vector space shared by queries and
// indexed clips.
type EmbedService interface {
	// EmbedText tokenizes and encodes the input, returning a fixed-length
	// vector with the batch dimension removed.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the ensure/upsert/search contract with the vector index.
type VectorStore interface {
	// EnsureCollection creates the named collection with the given
	// dimension and cosine metric if it does not exist. Idempotent; never
	// alters an existing collection.
	EnsureCollection(ctx context.Context, collection string, dim int) error

	// UpsertOne inserts or replaces a single point. An empty id means a
	// fresh one is generated. Returns the id used.
	UpsertOne(ctx context.Context, collection string, vector []float32, payload Payload, id string) (string, error)

	// UpsertBatch performs one bulk write of all points. The collection is
	// sized from the first point's vector.
	UpsertBatch(ctx context.Context, collection string, points []Point) error

	// Search returns up to k hits ordered by non-increasing score. An
	// empty collection yields an empty slice, not an error.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]SearchHit, error)

	// Close releases the connection to the store.
	Close() error
}
