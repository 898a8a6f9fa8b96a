package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX reads the word/document.xml entry of a DOCX archive and
// joins its paragraph text. The title comes from docProps/core.xml when set.
func extractDOCX(filename string, data []byte) (*Content, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening docx archive: %w", err)
	}

	text, err := docxDocumentText(reader)
	if err != nil {
		return nil, err
	}

	title := docxTitle(reader)
	if title == "" {
		title = titleFromFilename(filename)
	}

	return &Content{Title: title, Text: text}, nil
}

// documentXML mirrors the parts of word/document.xml we care about.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

func docxDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("opening document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading document.xml: %w", err)
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", fmt.Errorf("parsing document.xml: %w", err)
		}

		var sb strings.Builder
		for i, para := range doc.Body.Paragraphs {
			if i > 0 {
				sb.WriteString("\n")
			}
			for _, run := range para.Runs {
				for _, t := range run.Text {
					sb.WriteString(t.Content)
				}
			}
		}
		return strings.TrimSpace(sb.String()), nil
	}
	return "", nil
}

type coreXML struct {
	Title string `xml:"title"`
}

func docxTitle(reader *zip.Reader) string {
	for _, file := range reader.File {
		if file.Name != "docProps/core.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return ""
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ""
		}

		var core coreXML
		if err := xml.Unmarshal(content, &core); err != nil {
			return ""
		}
		return strings.TrimSpace(core.Title)
	}
	return ""
}
