// Package render provides output renderers for normalized documents.
// This file implements the Markdown renderer, which applies the final
// cleanup every written document goes through.
package render

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/core/structure"
)

var blankRunRegex = regexp.MustCompile(`\n{3,}`)

// MarkdownRenderer writes normalized Markdown.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the cleaned Markdown as bytes.
func (r *MarkdownRenderer) Render(markdown string, meta core.Metadata) ([]byte, error) {
	return []byte(Clean(markdown)), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// Clean normalizes line endings to LF, strips the artifact token and
// collapses runs of three or more newlines to two.
func Clean(markdown string) string {
	text := strings.ReplaceAll(markdown, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, structure.ArtifactToken, "")
	return blankRunRegex.ReplaceAllString(text, "\n\n")
}
