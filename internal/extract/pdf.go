package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// extractPDF shells out to pdftotext. The binary must be on PATH; PDF text
// extraction in pure Go is not reliable enough for arbitrary documents.
func extractPDF(ctx context.Context, filename string, data []byte) (*Content, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not found in PATH: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "botverse-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp pdf: %w", err)
	}

	// "-" sends the extracted text to stdout.
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", src, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return &Content{
		Title: titleFromFilename(filename),
		Text:  strings.TrimSpace(stdout.String()),
	}, nil
}
