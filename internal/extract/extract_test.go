package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtract_PlainText(t *testing.T) {
	got, err := Extract(context.Background(), "release_notes.txt", []byte("  hello world\n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Text != "hello world" {
		t.Errorf("Text = %q, want %q", got.Text, "hello world")
	}
	if got.Title != "release notes" {
		t.Errorf("Title = %q, want %q", got.Title, "release notes")
	}
}

func TestExtract_Markdown(t *testing.T) {
	source := "# Getting Started\n\nInstall the tool with `go install`.\n\n## Usage\n\nRun it.\n"

	got, err := Extract(context.Background(), "guide.md", []byte(source))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Title != "Getting Started" {
		t.Errorf("Title = %q, want %q", got.Title, "Getting Started")
	}
	for _, want := range []string{"Getting Started", "Install the tool", "Usage", "Run it."} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("Text missing %q:\n%s", want, got.Text)
		}
	}
	if strings.Contains(got.Text, "#") {
		t.Errorf("Text still contains markdown syntax:\n%s", got.Text)
	}
}

func TestExtract_HTML(t *testing.T) {
	source := `<html><head><title>FAQ &amp; Help</title>
<script>alert("nope")</script></head>
<body><h1>Questions</h1><p>First &amp; foremost.</p></body></html>`

	got, err := Extract(context.Background(), "faq.html", []byte(source))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Title != "FAQ & Help" {
		t.Errorf("Title = %q, want %q", got.Title, "FAQ & Help")
	}
	if !strings.Contains(got.Text, "Questions") || !strings.Contains(got.Text, "First & foremost.") {
		t.Errorf("Text = %q", got.Text)
	}
	if strings.Contains(got.Text, "alert") {
		t.Errorf("script content leaked into text: %q", got.Text)
	}
}

func TestExtract_DOCX(t *testing.T) {
	documentXML := `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
  </body>
</document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	got, err := Extract(context.Background(), "handbook.docx", buf.Bytes())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "First paragraph.\nSecond paragraph."
	if got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
	if got.Title != "handbook" {
		t.Errorf("Title = %q, want %q", got.Title, "handbook")
	}
}

func TestExtract_DOCXInvalidArchive(t *testing.T) {
	_, err := Extract(context.Background(), "broken.docx", []byte("not a zip"))
	if err == nil {
		t.Fatal("Extract() expected error for invalid archive")
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	_, err := Extract(context.Background(), "image.png", []byte{0x89, 0x50})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Extract() error = %v, want ErrUnsupportedFormat", err)
	}
}
