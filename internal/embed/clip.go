package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/logger"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config holds configuration for the CLIP text-encoder sidecar.
type Config struct {
	// URL of the encoder sidecar, without trailing slash.
	URL string
	// Model is the CLIP architecture name, e.g. "ViT-B-32".
	Model string
	// Pretrained names the weight set, e.g. "laion2b_s34b_b79k".
	Pretrained string
	// Timeout bounds each HTTP call in addition to the caller's context.
	Timeout time.Duration
}

// CLIPEmbedder produces dense text embeddings in the joint text/visual
// CLIP space the video clips were encoded with. The encoder model is
// loaded by the sidecar at most once per process: the first EmbedText
// performs a guarded load handshake, later calls reuse the loaded model.
// A failed load does not poison the embedder; the next call retries.
type CLIPEmbedder struct {
	config Config
	client *http.Client

	mu     sync.Mutex
	loaded bool
	dim    int
}

var _ core.EmbedService = (*CLIPEmbedder)(nil)

type loadRequest struct {
	Model      string `json:"model"`
	Pretrained string `json:"pretrained"`
}

type loadResponse struct {
	Dim int `json:"dim"`
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewCLIPEmbedder creates a CLIP embedder for the given sidecar. No
// network call happens until the first EmbedText.
func NewCLIPEmbedder(cfg Config) *CLIPEmbedder {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")

	return &CLIPEmbedder{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// EmbedText encodes the text into a fixed-length vector. Deterministic for
// a fixed text and model version: the sidecar runs the encoder in eval
// mode with no gradient. Empty text is passed through unchanged.
func (e *CLIPEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := e.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	body, err := e.post(ctx, "/embed/text", embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	var resp embedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("encoder returned an empty embedding")
	}

	vector := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vector[i] = float32(v)
	}

	e.mu.Lock()
	dim := e.dim
	e.mu.Unlock()
	if dim > 0 && len(vector) != dim {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", dim, len(vector))
	}

	return vector, nil
}

// Dimensions returns the vector width of the loaded model, or 0 before
// the first successful load.
func (e *CLIPEmbedder) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dim
}

// ensureLoaded performs the one-time model load handshake. The mutex
// guarantees at most one load under concurrent first use; the loaded flag
// stays false on failure so a later call can retry.
func (e *CLIPEmbedder) ensureLoaded(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}

	logger.Info("Loading CLIP text encoder (%s, %s)...", e.config.Model, e.config.Pretrained)

	body, err := e.post(ctx, "/load", loadRequest{
		Model:      e.config.Model,
		Pretrained: e.config.Pretrained,
	})
	if err != nil {
		return fmt.Errorf("failed to load CLIP text encoder: %w", err)
	}

	var resp loadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode load response: %w", err)
	}
	if resp.Dim <= 0 {
		return fmt.Errorf("encoder reported invalid dimension %d", resp.Dim)
	}

	e.loaded = true
	e.dim = resp.Dim
	logger.Info("CLIP text encoder ready (dim=%d)", e.dim)
	return nil
}

// post sends a JSON request to the sidecar and returns the response body.
func (e *CLIPEmbedder) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.URL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("encoder error: %s", errResp.Error)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
