package embedding

import (
	"context"
	"strings"

	"github.com/cadencelabs/driftwatch/internal/errors"
	"github.com/cadencelabs/driftwatch/internal/platform/timeouts"
	"github.com/openai/openai-go"
)

// DefaultOpenAIModel is the embedding model used when none is configured.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAI embeds texts through the OpenAI embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a provider over an existing client. An empty model falls
// back to DefaultOpenAIModel.
func NewOpenAI(client *openai.Client, model string) *OpenAI {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: client, model: model}
}

// Embed returns the embedding vector for text.
func (p *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	if p == nil || p.client == nil {
		return nil, errors.New(errors.CodeProviderUnavailable, "openai client is not configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.CodeEmbeddingEmptyText, "text to embed is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.ProviderCall)
	defer cancel()

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeProviderUnavailable, "create embedding", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New(errors.CodeProviderBadResponse, "embedding response carries no vector")
	}
	return resp.Data[0].Embedding, nil
}

var _ Provider = (*OpenAI)(nil)
