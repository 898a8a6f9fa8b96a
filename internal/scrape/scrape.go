// Package scrape fetches a web page and reduces it to plain text for
// ingestion.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/botverse-dev/botverse/internal/extract"
)

// maxBodySize caps how much of a page we read. Pages larger than this are
// truncated, not rejected.
const maxBodySize = 10 << 20 // 10 MiB

const userAgent = "botverse-scraper/1.0"

// Scraper downloads pages over HTTP.
type Scraper struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a scraper with a 30 second request timeout.
func New(logger *slog.Logger) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Fetch downloads the page at url and returns its visible text. Non-HTML
// responses are returned as-is when they are plain text.
func (s *Scraper) Fetch(ctx context.Context, url string) (*extract.Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	contentType := resp.Header.Get("Content-Type")
	name := "page.html"
	if strings.Contains(contentType, "text/plain") {
		name = "page.txt"
	}

	s.logger.Debug("fetched page",
		"url", url,
		"bytes", len(body),
		"content_type", contentType)

	content, err := extract.Extract(ctx, name, body)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", url, err)
	}
	if content.Title == "page" {
		content.Title = url
	}
	return content, nil
}
