package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// HuggingFaceModel is the default sentence-embedding model.
	HuggingFaceModel = "BAAI/bge-base-en-v1.5"

	// HuggingFaceDimension is the output dimension of bge-base-en-v1.5.
	HuggingFaceDimension = 768

	// bgeQueryPrefix is the instruction prefix the BGE family recommends for
	// retrieval tasks. It is baked into every stored vector, so changing it
	// invalidates similarity against previously ingested content.
	bgeQueryPrefix = "Represent this sentence for retrieval: "

	defaultHFBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"
)

// HuggingFace embeds text through the Hugging Face serverless inference API.
// There is no official Go SDK; the API is a single JSON POST.
type HuggingFace struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewHuggingFace creates a backend for the given API key using the default
// BGE model.
func NewHuggingFace(apiKey string) *HuggingFace {
	return &HuggingFace{
		apiKey:  apiKey,
		model:   HuggingFaceModel,
		baseURL: defaultHFBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL overrides the inference endpoint. Used in tests.
func (h *HuggingFace) WithBaseURL(u string) *HuggingFace {
	h.baseURL = strings.TrimRight(u, "/")
	return h
}

func (h *HuggingFace) Name() string   { return "huggingface" }
func (h *HuggingFace) Dimension() int { return HuggingFaceDimension }

type hfRequest struct {
	Inputs  []string        `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

// Embed posts the prefixed texts to the feature-extraction pipeline.
// HTTP 503 means the model is still loading and HTTP 429 is a rate limit;
// both are retryable. Anything else fails permanently.
func (h *HuggingFace) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = bgeQueryPrefix + t
	}

	body, err := json.Marshal(hfRequest{
		Inputs:  prefixed,
		Options: map[string]bool{"wait_for_model": false},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := h.baseURL + "/" + h.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, Retryable(fmt.Errorf("huggingface request: %w", err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusTooManyRequests:
		return nil, Retryable(fmt.Errorf("huggingface status %d: %s", resp.StatusCode, truncate(payload)))
	default:
		return nil, fmt.Errorf("huggingface status %d: %s", resp.StatusCode, truncate(payload))
	}

	var raw [][]float64
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	vectors := make([][]float32, len(raw))
	for i, v := range raw {
		vectors[i] = toFloat32(v)
	}
	return vectors, nil
}

func truncate(b []byte) string {
	const max = 200
	s := string(b)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// toFloat32 narrows API float64 output to the float32 storage type.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
