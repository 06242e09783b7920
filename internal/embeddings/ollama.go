package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/streed/mod-notes/internal/config"
	interrors "github.com/streed/mod-notes/internal/errors"
	"github.com/streed/mod-notes/internal/logger"
)

// OllamaEmbedding calls a local Ollama server's embeddings endpoint
type OllamaEmbedding struct {
	cfg    *config.Config
	client *http.Client
}

func NewOllamaEmbedding(cfg *config.Config) *OllamaEmbedding {
	return &OllamaEmbedding{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *OllamaEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"model":  e.cfg.EmbeddingModel,
		"prompt": text,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := e.cfg.GetOllamaAPIURL("embeddings")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama request failed: %w", interrors.ErrEmbedderUnavailable, err)
	}
	defer resp.Body.Close()

	logger.Debug("Ollama response status: %d, time: %v", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", interrors.ErrEmbedderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ollama returned %d: %s", interrors.ErrEmbedderUnavailable, resp.StatusCode, string(body))
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse embedding response: %w", interrors.ErrEmbedderUnavailable, err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding from model %s", interrors.ErrEmbedderUnavailable, e.cfg.EmbeddingModel)
	}

	return result.Embedding, nil
}

func (e *OllamaEmbedding) Dimensions() int {
	return e.cfg.VectorDimensions
}
