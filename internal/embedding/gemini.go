package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// GeminiModel is the embedding model used by the Gemini backend.
	GeminiModel = "text-embedding-004"

	// GeminiDimension is the vector dimension of text-embedding-004.
	GeminiDimension = 768
)

// Gemini embeds text with Google's generative AI embedding API.
type Gemini struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

// NewGemini creates a backend authenticated with the given API key.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  client.EmbeddingModel(GeminiModel),
	}, nil
}

func (g *Gemini) Name() string   { return "gemini" }
func (g *Gemini) Dimension() int { return GeminiDimension }

// Embed batches all texts into a single BatchEmbedContents call.
// Quota exhaustion and server-side failures are retryable.
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	batch := g.model.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := g.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		if isTransientGoogleError(err) {
			return nil, Retryable(fmt.Errorf("gemini embeddings: %w", err))
		}
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// isTransientGoogleError reports whether the API error is worth a retry:
// HTTP 429 or any 5xx.
func isTransientGoogleError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}
