// Package embedding converts text into vectors through an ordered chain of
// interchangeable backends with retry and fallback.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable reports that every configured backend failed for a request.
var ErrUnavailable = errors.New("embedding: all backends unavailable")

// Backend is a single embedding service. Embed must return one vector per
// input text, in input order, all produced by the same model.
type Backend interface {
	// Name identifies the backend in logs and ingestion summaries.
	Name() string
	// Dimension is the length of every vector this backend produces.
	Dimension() int
	// Embed converts texts to vectors. Failures that are worth one retry
	// (rate limits, model cold starts) are wrapped with Retryable.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// retryableError marks a backend failure as transient.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable wraps err so the provider retries the backend once before
// falling through to the next one.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// validateCount guards against a backend returning the wrong number of
// vectors, which would desynchronize chunk texts from their embeddings.
func validateCount(name string, texts []string, vectors [][]float32) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding: backend %s returned %d vectors for %d texts", name, len(vectors), len(texts))
	}
	return nil
}
