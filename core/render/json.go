// Package render — JSON renderer.
// Builds a structured JSON export from Markdown and run metadata. The
// Markdown is parsed for headings, sections, images, tables, list items
// and paragraphs.
package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/docmark/core"
)

// JSONRenderer produces structured JSON output from Markdown.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render converts Markdown and metadata into a core.DocumentJSON.
func (r *JSONRenderer) Render(markdown string, meta core.Metadata) ([]byte, error) {
	markdown = Clean(markdown)
	headings := extractHeadings(markdown)

	doc := core.DocumentJSON{
		Metadata: meta,
		Markdown: markdown,
		Structure: core.DocumentStructure{
			Headings:   headings,
			Sections:   buildSections(markdown, headings),
			Images:     extractImages(markdown),
			Tables:     countTables(markdown),
			ListItems:  countListItems(markdown),
			Paragraphs: countParagraphs(markdown),
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// --- Markdown parsing helpers ---

var headingRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

func extractHeadings(md string) []core.HeadingRef {
	matches := headingRegex.FindAllStringSubmatch(md, -1)
	headings := make([]core.HeadingRef, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, core.HeadingRef{
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
		})
	}
	return headings
}

// imageRegex matches Markdown images ![alt](path).
var imageRegex = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)

func extractImages(md string) []core.ImageRef {
	matches := imageRegex.FindAllStringSubmatch(md, -1)
	images := make([]core.ImageRef, 0, len(matches))
	for _, m := range matches {
		images = append(images, core.ImageRef{Alt: m[1], Path: m[2]})
	}
	return images
}

func buildSections(md string, headings []core.HeadingRef) []core.Section {
	if len(headings) == 0 {
		return nil
	}

	lines := strings.Split(md, "\n")
	sections := make([]core.Section, 0, len(headings))
	headingIdx := 0

	var current *core.Section
	var sectionLines []string

	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(sectionLines, "\n"))
			sections = append(sections, *current)
		}
	}

	for _, line := range lines {
		if headingRegex.MatchString(line) && headingIdx < len(headings) {
			flush()
			current = &core.Section{
				Heading: headings[headingIdx].Text,
				Level:   headings[headingIdx].Level,
			}
			sectionLines = nil
			headingIdx++
		} else if current != nil {
			sectionLines = append(sectionLines, line)
		}
	}
	flush()

	return sections
}

// countTables counts Markdown tables by their separator rows (| --- |).
var tableSepRegex = regexp.MustCompile(`(?m)^\|[-:| ]+\|$`)

func countTables(md string) int {
	return len(tableSepRegex.FindAllString(md, -1))
}

var listItemRegex = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+\.)\s`)

func countListItems(md string) int {
	return len(listItemRegex.FindAllString(md, -1))
}

// countParagraphs counts blank-line separated blocks that are not headings,
// lists, tables or images.
func countParagraphs(md string) int {
	n := 0
	for _, block := range strings.Split(md, "\n\n") {
		block = strings.TrimSpace(block)
		switch {
		case block == "",
			strings.HasPrefix(block, "#"),
			strings.HasPrefix(block, "|"),
			strings.HasPrefix(block, "!["),
			listItemRegex.MatchString(block):
			continue
		}
		n++
	}
	return n
}
