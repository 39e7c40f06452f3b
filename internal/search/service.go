package search

import (
	"context"
	"fmt"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/logger"
)

// Service ties the embedding provider and the vector store together: one
// query in, one vector out, one search call out. Each call is independent
// and stateless; no state is shared between requests.
type Service struct {
	embed core.EmbedService
	store core.VectorStore
}

// NewService creates a search service over the given embedder and store.
func NewService(embed core.EmbedService, store core.VectorStore) *Service {
	return &Service{
		embed: embed,
		store: store,
	}
}

// Search embeds the query text and returns the k nearest clips from the
// collection, ordered by non-increasing score.
func (s *Service) Search(ctx context.Context, collection, query string, k int) ([]core.SearchHit, error) {
	vector, err := s.embed.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.store.Search(ctx, collection, vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", collection, err)
	}

	logger.Debug("Query %q returned %d hits from %s", query, len(hits), collection)
	return hits, nil
}

// Index embeds the caption and upserts a single clip with the given
// payload into the collection, returning the generated id.
func (s *Service) Index(ctx context.Context, collection, caption string, payload core.Payload) (string, error) {
	vector, err := s.embed.EmbedText(ctx, caption)
	if err != nil {
		return "", fmt.Errorf("failed to embed caption: %w", err)
	}

	id, err := s.store.UpsertOne(ctx, collection, vector, payload, "")
	if err != nil {
		return "", fmt.Errorf("failed to index clip into %s: %w", collection, err)
	}

	logger.Debug("Indexed clip %s into %s", id, collection)
	return id, nil
}
