package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

var markdownParser = goldmark.New(
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// extractMarkdown parses markdown into an AST and collects the plain text.
// The first top-level heading becomes the title when present.
func extractMarkdown(filename string, data []byte) (*Content, error) {
	reader := text.NewReader(data)
	doc := markdownParser.Parser().Parse(reader)

	title := titleFromFilename(filename)
	tree, err := toc.Inspect(doc, data,
		toc.MinDepth(1),
		toc.MaxDepth(1),
		toc.Compact(true),
	)
	if err == nil && len(tree.Items) > 0 {
		if t := strings.TrimSpace(string(tree.Items[0].Title)); t != "" {
			title = t
		}
	}

	var sb strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Separate block elements with newlines.
			switch n.Kind() {
			case ast.KindParagraph, ast.KindHeading, ast.KindListItem,
				ast.KindBlockquote, ast.KindCodeBlock, ast.KindFencedCodeBlock:
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.CodeBlock:
			writeCodeLines(&sb, node.Lines(), data)
		case *ast.FencedCodeBlock:
			writeCodeLines(&sb, node.Lines(), data)
		case *ast.AutoLink:
			sb.Write(node.URL(data))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return &Content{
		Title: title,
		Text:  strings.TrimSpace(sb.String()),
	}, nil
}

func writeCodeLines(sb *strings.Builder, lines *text.Segments, source []byte) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
}
