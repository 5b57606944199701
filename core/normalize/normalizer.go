// Package normalize implements the Normalizer interface.
// It sanitizes HTML and converts it into Markdown, the canonical format for
// every downstream renderer. Tables are rendered through core/table so DOM
// tables and spreadsheet tables come out identical.
package normalize

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/docmark/core/table"
)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct {
	policy    *bluemonday.Policy
	converter *converter.Converter
}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	conv.Register.RendererFor("table", converter.TagTypeBlock, renderTable, converter.PriorityEarly)

	return &MarkdownNormalizer{
		policy:    bluemonday.UGCPolicy(),
		converter: conv,
	}
}

// Normalize converts an HTML document or fragment into Markdown. Only the
// body is converted; head content such as <title> never leaks into the text.
func (n *MarkdownNormalizer) Normalize(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()
	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serializing body: %w", err)
	}

	clean := n.policy.Sanitize(body)

	markdown, err := n.converter.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return markdown, nil
}

// renderTable writes a <table> as a padded pipe table. Nested tables are
// flattened into their parent's cells.
func renderTable(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	rows := table.FromDOM(goquery.NewDocumentFromNode(n).Selection)
	if len(rows) == 0 {
		return converter.RenderSuccess
	}
	w.WriteString("\n\n")
	w.WriteString(table.Render(rows))
	w.WriteString("\n\n")
	return converter.RenderSuccess
}
