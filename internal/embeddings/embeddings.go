package embeddings

import (
	"context"
	"fmt"
	"math"

	"github.com/streed/mod-notes/internal/config"
	interrors "github.com/streed/mod-notes/internal/errors"
)

// Embedder maps text to a fixed-dimension vector. Implementations must be safe
// for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

const (
	ProviderRandom = "random"
	ProviderHash   = "hash"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// New builds the embedder named by cfg.EmbeddingProvider
func New(cfg *config.Config) (Embedder, error) {
	dims := cfg.VectorDimensions
	if dims <= 0 {
		return nil, fmt.Errorf("%w: %d", interrors.ErrInvalidDimensions, dims)
	}

	switch cfg.EmbeddingProvider {
	case "", ProviderRandom:
		return NewRandomEmbedding(dims), nil
	case ProviderHash:
		return NewHashEmbedding(dims), nil
	case ProviderOllama:
		return NewOllamaEmbedding(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIEmbedding(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", interrors.ErrUnknownEmbedProvider, cfg.EmbeddingProvider)
	}
}

// CosineSimilarity returns dot(a,b)/(|a||b|). Vectors of different length are
// an error; a zero vector on either side scores 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", interrors.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push parallel vectors just past the bounds
	return math.Max(-1, math.Min(1, sim)), nil
}
