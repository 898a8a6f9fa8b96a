// Package extract turns uploaded files into plain text ready for chunking.
// Format support is keyed on the file extension.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file types no extractor handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Content is the extracted text plus a best-effort title.
type Content struct {
	Title string
	Text  string
}

// Extract converts raw file bytes to plain text based on the filename's
// extension. The title falls back to the filename without its extension.
func Extract(ctx context.Context, filename string, data []byte) (*Content, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt":
		return &Content{
			Title: titleFromFilename(filename),
			Text:  strings.TrimSpace(string(data)),
		}, nil
	case ".md", ".markdown":
		return extractMarkdown(filename, data)
	case ".html", ".htm":
		return extractHTML(filename, data)
	case ".docx":
		return extractDOCX(filename, data)
	case ".pdf":
		return extractPDF(ctx, filename, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// titleFromFilename derives a readable title from a file name.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.ReplaceAll(base, "_", " ")
}
