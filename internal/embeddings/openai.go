package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/streed/mod-notes/internal/config"
	"github.com/streed/mod-notes/internal/constants"
	interrors "github.com/streed/mod-notes/internal/errors"
)

// OpenAIEmbedding talks to any OpenAI-compatible embeddings API
type OpenAIEmbedding struct {
	client *openai.Client
	model  string
	// dimensions is sent with each request; zero keeps the model's own size
	dimensions int
}

var nativeDimensions = map[string]int{
	string(openai.AdaEmbeddingV2):  1536,
	string(openai.SmallEmbedding3): 1536,
	string(openai.LargeEmbedding3): 3072,
}

// NewOpenAIEmbedding uses text-embedding-3-small unless another model is
// configured. vector_dimensions is only requested from the text-embedding-3
// family, the models that accept a dimensions parameter.
func NewOpenAIEmbedding(cfg *config.Config) *OpenAIEmbedding {
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	model := cfg.EmbeddingModel
	if model == "" || model == constants.DefaultOllamaModel {
		model = string(openai.SmallEmbedding3)
	}

	e := &OpenAIEmbedding{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
	if strings.HasPrefix(model, "text-embedding-3") {
		e.dimensions = cfg.VectorDimensions
	}
	return e
}

func (e *OpenAIEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: create embeddings failed: %w", interrors.ErrEmbedderUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", interrors.ErrEmbedderUnavailable)
	}
	return resp.Data[0].Embedding, nil
}

// Dimensions is 0 for a model of unknown size queried without a dimensions parameter
func (e *OpenAIEmbedding) Dimensions() int {
	if e.dimensions > 0 {
		return e.dimensions
	}
	return nativeDimensions[e.model]
}
