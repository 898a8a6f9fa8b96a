package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultRetryDelay is the pause before the single retry of a backend that
// failed with a retryable error (a rate limit or a model cold start).
const DefaultRetryDelay = 2 * time.Second

// Result carries the vectors of one Embed call together with the backend
// that produced them. Every vector shares Dimension.
type Result struct {
	Vectors   [][]float32
	Backend   string
	Dimension int
}

// Provider tries backends in construction order until one embeds the whole
// batch. A retryable failure is retried once after retryDelay before the
// provider falls through; all texts of one call are always embedded by the
// same backend so a batch never mixes dimensions.
type Provider struct {
	backends   []Backend
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewProvider creates a Provider over the given backends, tried in order.
// At least one backend is required.
func NewProvider(logger *slog.Logger, backends ...Backend) (*Provider, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("embedding: at least one backend required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		backends:   backends,
		retryDelay: DefaultRetryDelay,
		logger:     logger,
	}, nil
}

// WithRetryDelay overrides the delay before a backend's single retry.
// Intended for tests; returns the provider for chaining.
func (p *Provider) WithRetryDelay(d time.Duration) *Provider {
	p.retryDelay = d
	return p
}

// Embed converts texts into vectors using the first backend that succeeds.
// Returns ErrUnavailable wrapping the last backend error once every backend
// has been exhausted.
func (p *Provider) Embed(ctx context.Context, texts []string) (*Result, error) {
	var lastErr error
	for _, b := range p.backends {
		vectors, err := p.tryBackend(ctx, b, texts)
		if err != nil {
			p.logger.Warn("embedding backend failed, falling through",
				"backend", b.Name(), "error", err)
			lastErr = fmt.Errorf("%s: %w", b.Name(), err)
			continue
		}
		return &Result{
			Vectors:   vectors,
			Backend:   b.Name(),
			Dimension: b.Dimension(),
		}, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

// EmbedWith embeds texts using only the named backend, with the same
// single-retry policy but no fallback. The ingestion pipeline uses it to pin
// every chunk of one document to the backend selected for the first chunk.
func (p *Provider) EmbedWith(ctx context.Context, backend string, texts []string) ([][]float32, error) {
	for _, b := range p.backends {
		if b.Name() == backend {
			return p.tryBackend(ctx, b, texts)
		}
	}
	return nil, fmt.Errorf("embedding: unknown backend %q", backend)
}

// tryBackend runs one backend attempt, retrying once after retryDelay when
// the failure is marked retryable. Permanent failures return immediately.
func (p *Provider) tryBackend(ctx context.Context, b Backend, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		vs, err := b.Embed(ctx, texts)
		if err != nil {
			if IsRetryable(err) {
				p.logger.Debug("retryable embedding failure",
					"backend", b.Name(), "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		if err := validateCount(b.Name(), texts, vs); err != nil {
			return backoff.Permanent(err)
		}
		vectors = vs
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(p.retryDelay), 1)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return vectors, nil
}
