package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/index"
)

// captionEmbedder derives a tiny deterministic vector from the caption.
type captionEmbedder struct{}

func (captionEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func manifest(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `{"fileurl":"clip%d.mp4","caption":"clip number %d"}`+"\n", i, i)
	}
	return b.String()
}

func TestPipelineIngestsAllRecords(t *testing.T) {
	ctx := context.Background()
	store := index.NewMemoryStore()
	buffer := index.NewBuffer(store)
	pipeline := NewPipeline(captionEmbedder{}, buffer, 2)

	ingested, err := pipeline.Run(ctx, strings.NewReader(manifest(5)), "clips")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ingested != 5 {
		t.Fatalf("expected 5 records ingested, got %d", ingested)
	}
	if got := buffer.Pending("clips"); got != 0 {
		t.Fatalf("expected buffer drained, got %d pending", got)
	}

	hits, err := store.Search(ctx, "clips", []float32{14, 1}, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 5 {
		t.Fatalf("expected all 5 clips stored, got %d", len(hits))
	}
}

func TestPipelineSkipsEmptyCaptionsAndBlankLines(t *testing.T) {
	input := `{"fileurl":"a.mp4","caption":"a clip"}

{"fileurl":"b.mp4","caption":""}
{"fileurl":"c.mp4","caption":"another clip"}
`
	store := index.NewMemoryStore()
	pipeline := NewPipeline(captionEmbedder{}, index.NewBuffer(store), 10)

	ingested, err := pipeline.Run(context.Background(), strings.NewReader(input), "clips")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ingested != 2 {
		t.Fatalf("expected 2 records ingested, got %d", ingested)
	}
}

func TestPipelineRejectsMalformedRecord(t *testing.T) {
	input := `{"fileurl":"a.mp4","caption":"ok"}
not json
`
	store := index.NewMemoryStore()
	pipeline := NewPipeline(captionEmbedder{}, index.NewBuffer(store), 10)

	_, err := pipeline.Run(context.Background(), strings.NewReader(input), "clips")
	if err == nil {
		t.Fatal("expected malformed record to abort the run")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error should name the offending line: %v", err)
	}
}

func TestPipelineKeepsPointsBufferedWhenFlushFails(t *testing.T) {
	store := &failingStore{}
	buffer := index.NewBuffer(store)
	pipeline := NewPipeline(captionEmbedder{}, buffer, 2)

	ingested, err := pipeline.Run(context.Background(), strings.NewReader(manifest(3)), "clips")
	if err == nil {
		t.Fatal("expected flush failure to abort the run")
	}
	if ingested != 0 {
		t.Fatalf("expected no records committed, got %d", ingested)
	}
	if got := buffer.Pending("clips"); got != 2 {
		t.Fatalf("expected the failed batch retained for retry, got %d pending", got)
	}
}

// failingStore rejects every bulk write.
type failingStore struct{}

func (failingStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	return nil
}

func (failingStore) UpsertOne(ctx context.Context, collection string, vector []float32, payload core.Payload, id string) (string, error) {
	return "", fmt.Errorf("store unavailable")
}

func (failingStore) UpsertBatch(ctx context.Context, collection string, points []core.Point) error {
	return fmt.Errorf("store unavailable")
}

func (failingStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]core.SearchHit, error) {
	return nil, fmt.Errorf("store unavailable")
}

func (failingStore) Close() error { return nil }
