package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/index"
	"github.com/clipseek/clipseek/internal/logger"
	"github.com/clipseek/clipseek/internal/search"
)

// Record is one manifest entry: a playable clip URL plus the caption that
// stands in for the clip's visual content in the shared embedding space.
type Record struct {
	FileURL string `json:"fileurl"`
	Caption string `json:"caption"`
}

// Pipeline embeds manifest records and batches them into the index via the
// ingestion buffer, flushing every FlushEvery records and once at the end.
type Pipeline struct {
	embed      core.EmbedService
	buffer     *index.Buffer
	flushEvery int
}

// NewPipeline creates an ingestion pipeline. flushEvery must be positive.
func NewPipeline(embed core.EmbedService, buffer *index.Buffer, flushEvery int) *Pipeline {
	return &Pipeline{
		embed:      embed,
		buffer:     buffer,
		flushEvery: flushEvery,
	}
}

// Run reads newline-delimited JSON records and ingests them into the
// collection. It returns the number of records committed. A failed flush
// aborts the run; the buffered points stay pending, so re-running the same
// manifest re-attempts them.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, collection string) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ingested := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return ingested, fmt.Errorf("malformed manifest record on line %d: %w", line, err)
		}
		if rec.Caption == "" {
			logger.Warn("Skipping record on line %d: empty caption", line)
			continue
		}

		vector, err := p.embed.EmbedText(ctx, rec.Caption)
		if err != nil {
			return ingested, fmt.Errorf("failed to embed caption on line %d: %w", line, err)
		}

		p.buffer.Add(collection, vector, core.Payload{
			search.PayloadKeyFileURL: rec.FileURL,
		})

		if n := p.buffer.Pending(collection); n >= p.flushEvery {
			if err := p.buffer.Flush(ctx, collection); err != nil {
				return ingested, err
			}
			ingested += n
			logger.Info("Ingested %d records into %s", ingested, collection)
		}
	}
	if err := scanner.Err(); err != nil {
		return ingested, fmt.Errorf("failed to read manifest: %w", err)
	}

	remaining := p.buffer.Pending(collection)
	if err := p.buffer.Flush(ctx, collection); err != nil {
		return ingested, err
	}
	ingested += remaining

	logger.Info("Finished ingesting %d records into %s", ingested, collection)
	return ingested, nil
}
