// Package generation produces answer text from a grounded prompt.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel is the generation model used for chat answers.
const GeminiModel = "gemini-2.0-flash-lite"

// Generator turns a fully assembled prompt into answer text.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// Gemini generates answers with the Google Generative AI API.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Generator = (*Gemini)(nil)

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: GeminiModel}, nil
}

// Generate sends the prompt and concatenates the text parts of the first
// candidate. The system prompt is optional.
func (g *Gemini) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	var content string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	if content == "" {
		return "", errors.New("response contained no text")
	}
	return content, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
