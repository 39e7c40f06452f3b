package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/logger"
)

// Field names for clip collections
const (
	FieldID      = "id"
	FieldVector  = "vector"
	FieldPayload = "payload"
)

// Max length for VarChar primary keys
const idMaxLength = "255"

// Client wraps the Milvus client behind the core.VectorStore contract. It
// is the sole point of contact with the remote index; store errors
// propagate to the caller, no retries are performed here.
type Client struct {
	client *milvusclient.Client
}

var _ core.VectorStore = (*Client)(nil)

// NewClient connects to Milvus at addr using the given API key.
func NewClient(ctx context.Context, addr, apiKey string) (*Client, error) {
	logger.Info("Connecting to Milvus at %s", addr)

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: addr,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
	}

	return &Client{client: c}, nil
}

// EnsureCollection creates the named collection with the given dimension
// and cosine metric if it does not already exist, then loads it for
// searching. An existing collection is never recreated or resized; a
// later write with a mismatched dimension is rejected by the store.
// Concurrent callers racing to create the same collection is a benign
// race the store tolerates.
func (c *Client) EnsureCollection(ctx context.Context, collection string, dim int) error {
	hasOpt := milvusclient.NewHasCollectionOption(collection)
	exists, err := c.client.HasCollection(ctx, hasOpt)
	if err != nil {
		return fmt.Errorf("failed to check if collection exists: %w", err)
	}

	if !exists {
		schema := &entity.Schema{
			CollectionName: collection,
			Description:    "Video clip embeddings",
			Fields: []*entity.Field{
				{
					Name:       FieldID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{
						"max_length": idMaxLength,
					},
				},
				{
					Name:     FieldVector,
					DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{
						"dim": fmt.Sprintf("%d", dim),
					},
				},
				{
					Name:     FieldPayload,
					DataType: entity.FieldTypeJSON,
				},
			},
		}

		createOpt := milvusclient.NewCreateCollectionOption(collection, schema)
		if err := c.client.CreateCollection(ctx, createOpt); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", collection, err)
		}

		vecIdx := index.NewHNSWIndex(entity.COSINE, 16, 200)
		indexOpt := milvusclient.NewCreateIndexOption(collection, FieldVector, vecIdx)
		if _, err := c.client.CreateIndex(ctx, indexOpt); err != nil {
			return fmt.Errorf("failed to create index on vector field: %w", err)
		}

		logger.Info("Created collection %s (dim=%d, metric=cosine)", collection, dim)
	}

	// Milvus requires the collection to be loaded before searching. It is
	// okay to load a collection that is already loaded.
	loadOpt := milvusclient.NewLoadCollectionOption(collection)
	if _, err := c.client.LoadCollection(ctx, loadOpt); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", collection, err)
	}

	return nil
}

// UpsertOne inserts or replaces a single point, sizing the collection from
// this vector's length. An empty id means a fresh UUID is generated.
// Returns the id used.
func (c *Client) UpsertOne(ctx context.Context, collection string, vector []float32, payload core.Payload, id string) (string, error) {
	if err := c.EnsureCollection(ctx, collection, len(vector)); err != nil {
		return "", err
	}

	if id == "" {
		id = uuid.NewString()
	}

	cols, err := buildColumns(len(vector), []core.Point{{ID: id, Vector: vector, Payload: payload}})
	if err != nil {
		return "", err
	}

	upsertOpt := milvusclient.NewColumnBasedInsertOption(collection, cols...)
	if _, err := c.client.Upsert(ctx, upsertOpt); err != nil {
		return "", fmt.Errorf("failed to upsert point %s: %w", id, err)
	}

	return id, nil
}

// UpsertBatch performs a single bulk write of all points, sizing the
// collection from the first point's vector. Vectors in the batch must
// share one dimension; a violation is rejected by the store, not checked
// here.
func (c *Client) UpsertBatch(ctx context.Context, collection string, points []core.Point) error {
	if len(points) == 0 {
		return nil
	}

	dim := len(points[0].Vector)
	if err := c.EnsureCollection(ctx, collection, dim); err != nil {
		return err
	}

	cols, err := buildColumns(dim, points)
	if err != nil {
		return err
	}

	upsertOpt := milvusclient.NewColumnBasedInsertOption(collection, cols...)
	if _, err := c.client.Upsert(ctx, upsertOpt); err != nil {
		return fmt.Errorf("failed to bulk upsert %d points: %w", len(points), err)
	}

	logger.Debug("Upserted %d points into %s", len(points), collection)
	return nil
}

// Search executes a nearest-neighbor search limited to the top k results
// under the collection's cosine metric. Zero matches yield an empty
// slice, not an error.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, k int) ([]core.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d", k)
	}

	searchOpt := milvusclient.NewSearchOption(collection, k, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(FieldVector).
		WithOutputFields(FieldPayload)

	resultSets, err := c.client.Search(ctx, searchOpt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	if len(resultSets) == 0 || resultSets[0].ResultCount == 0 {
		return []core.SearchHit{}, nil
	}

	rs := resultSets[0]

	var payloadCol *column.ColumnJSONBytes
	if col := rs.GetColumn(FieldPayload); col != nil {
		payloadCol, _ = col.(*column.ColumnJSONBytes)
	}

	hits := make([]core.SearchHit, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		id, err := rs.IDs.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read id at result %d: %w", i, err)
		}

		payload := core.Payload{}
		if payloadCol != nil && i < len(payloadCol.Data()) {
			if err := json.Unmarshal(payloadCol.Data()[i], &payload); err != nil {
				logger.Warn("Malformed payload on point %s: %v", id, err)
			}
		}

		score := float32(0)
		if i < len(rs.Scores) {
			score = rs.Scores[i]
		}

		hits = append(hits, core.SearchHit{
			ID:      id,
			Score:   score,
			Payload: payload,
		})
	}

	return hits, nil
}

// Close closes the connection to Milvus.
func (c *Client) Close() error {
	return c.client.Close(context.Background())
}

// buildColumns converts points into the column layout of a clip collection.
func buildColumns(dim int, points []core.Point) ([]column.Column, error) {
	ids := make([]string, 0, len(points))
	vectors := make([][]float32, 0, len(points))
	payloads := make([][]byte, 0, len(points))

	for _, p := range points {
		payloadBytes := []byte("{}")
		if p.Payload != nil {
			b, err := json.Marshal(p.Payload)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal payload for point %s: %w", p.ID, err)
			}
			payloadBytes = b
		}

		ids = append(ids, p.ID)
		vectors = append(vectors, p.Vector)
		payloads = append(payloads, payloadBytes)
	}

	return []column.Column{
		column.NewColumnVarChar(FieldID, ids),
		column.NewColumnFloatVector(FieldVector, dim, vectors),
		column.NewColumnJSONBytes(FieldPayload, payloads),
	}, nil
}
