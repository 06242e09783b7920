package embeddings

import (
	"context"
	"math/rand/v2"
)

// RandomEmbedding is a placeholder provider returning a fresh uniform vector in
// [-1, 1) on every call. Scores it produces carry no meaning.
type RandomEmbedding struct {
	dimensions int
}

func NewRandomEmbedding(dimensions int) *RandomEmbedding {
	return &RandomEmbedding{dimensions: dimensions}
}

func (e *RandomEmbedding) Embed(ctx context.Context, _ string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.dimensions)
	for i := range vec {
		vec[i] = rand.Float32()*2 - 1
	}
	return vec, nil
}

func (e *RandomEmbedding) Dimensions() int {
	return e.dimensions
}
