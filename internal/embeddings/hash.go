package embeddings

import (
	"context"
	"math"
	"strings"

	"github.com/streed/mod-notes/internal/constants"
)

// HashEmbedding derives a deterministic bag-of-words vector from the text.
// Useful offline and in tests; texts sharing words score closer together.
type HashEmbedding struct {
	dimensions int
}

func NewHashEmbedding(dimensions int) *HashEmbedding {
	return &HashEmbedding{dimensions: dimensions}
}

func (e *HashEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedding := make([]float32, e.dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		hash := hashString(word)
		weight := float32(hash%constants.HashModulo+1) / constants.HashModulo
		embedding[hash%e.dimensions] += weight
	}

	var sum float64
	for _, v := range embedding {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		norm := float32(1 / math.Sqrt(sum))
		for i := range embedding {
			embedding[i] *= norm
		}
	}

	return embedding, nil
}

func (e *HashEmbedding) Dimensions() int {
	return e.dimensions
}

func hashString(s string) int {
	h := 0
	for _, c := range s {
		h = h*constants.HashMultiplier + int(c)
	}
	if h < 0 {
		h = -h
	}
	// -MinInt is still negative
	if h < 0 {
		h = 0
	}
	return h
}
