package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// OpenAIModel is the embedding model used by the OpenAI backend.
	OpenAIModel = "text-embedding-3-small"

	// OpenAIDimension is the vector dimension of text-embedding-3-small.
	OpenAIDimension = 1536
)

// OpenAI embeds text with the OpenAI embeddings API.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI creates a backend authenticated with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

func (o *OpenAI) Name() string   { return "openai" }
func (o *OpenAI) Dimension() int { return OpenAIDimension }

// Embed requests one embedding per text. Rate limits and server-side
// failures are retryable; everything else is permanent.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: OpenAIModel,
	})
	if err != nil {
		if isTransientOpenAIError(err) {
			return nil, Retryable(fmt.Errorf("openai embeddings: %w", err))
		}
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = toFloat32(data.Embedding)
	}
	return vectors, nil
}

// isTransientOpenAIError reports whether the API error is worth a retry:
// HTTP 429 or any 5xx.
func isTransientOpenAIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}
