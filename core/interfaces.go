// Package core defines the shared types and stage interfaces for docmark.
// Each stage of the pipeline is a clean, testable interface; the concrete
// stages live in the sub-packages.
package core

import "context"

// BlockKind tags the structural role of a Block.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockListItem  BlockKind = "list_item"
	BlockTable     BlockKind = "table"
	BlockImage     BlockKind = "image"
)

// Block is one structural unit of a normalized document. Only the fields
// relevant to Kind are set:
//   - heading: Level (1-3) and Text
//   - paragraph, list_item: Text (list items carry their marker, e.g. "* x")
//   - table: Rows
//   - image: Alt and Path (relative to the document)
type Block struct {
	Kind  BlockKind  `json:"kind"`
	Level int        `json:"level,omitempty"`
	Text  string     `json:"text,omitempty"`
	Rows  [][]string `json:"rows,omitempty"`
	Alt   string     `json:"alt,omitempty"`
	Path  string     `json:"path,omitempty"`
}

// Heading returns a heading block.
func Heading(level int, text string) Block {
	return Block{Kind: BlockHeading, Level: level, Text: text}
}

// Paragraph returns a paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}

// ListItem returns a list item block. text includes the list marker.
func ListItem(text string) Block {
	return Block{Kind: BlockListItem, Text: text}
}

// Table returns a table block.
func Table(rows [][]string) Block {
	return Block{Kind: BlockTable, Rows: rows}
}

// Image returns an image block referencing a localized asset.
func Image(alt, path string) Block {
	return Block{Kind: BlockImage, Alt: alt, Path: path}
}

// Document is an append-ordered sequence of blocks. Blocks are never reordered.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Append adds blocks in order.
func (d *Document) Append(blocks ...Block) {
	d.Blocks = append(d.Blocks, blocks...)
}

// Origin identifies where a localized asset came from.
type Origin string

const (
	OriginArchivedFigure Origin = "archived-figure"
	OriginDataURI        Origin = "data-uri"
	OriginRemoteURL      Origin = "remote-url"
)

// Asset is one image file written under a run's images directory.
type Asset struct {
	Origin   Origin `json:"origin"`
	Source   string `json:"source"`
	Filename string `json:"filename"`
	Dir      string `json:"dir"`
}

// SourceKind identifies which input path produced a run.
type SourceKind string

const (
	SourceArchive SourceKind = "archive"
	SourceWeb     SourceKind = "web"
)

// Metadata describes a processing run for exports.
type Metadata struct {
	Source      string     `json:"source"`
	Kind        SourceKind `json:"kind"`
	Title       string     `json:"title"`
	RunID       string     `json:"run_id"`
	ProcessedAt string     `json:"processed_at"` // ISO8601
}

// Status of a processing run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the envelope handed back to callers: either a success with output
// locations or a failure with the error kind and message. A success that
// skipped items carries KindPartialContent.
type Result struct {
	Status       Status   `json:"status"`
	Kind         Kind     `json:"kind,omitempty"`
	Message      string   `json:"message"`
	RunID        string   `json:"run_id"`
	OutputDir    string   `json:"output_directory,omitempty"`
	MarkdownPath string   `json:"markdown_file,omitempty"`
	HTMLPath     string   `json:"html_file,omitempty"`
	ImagesDir    string   `json:"images_directory,omitempty"`
	Exports      []string `json:"exports,omitempty"`
	Assets       []Asset  `json:"assets,omitempty"`
	Skipped      int      `json:"skipped"`
	Partial      bool     `json:"partial"`
}

// MarkPartial sets Partial and Kind from Skipped.
func (r *Result) MarkPartial() {
	r.Partial = r.Skipped > 0
	if r.Partial {
		r.Kind = KindPartialContent
	}
}

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// HeadingRef, Section and ImageRef describe the structure summary used by the JSON export.
type (
	HeadingRef struct {
		Level int    `json:"level"`
		Text  string `json:"text"`
	}

	Section struct {
		Heading string `json:"heading"`
		Level   int    `json:"level"`
		Text    string `json:"text"`
	}

	ImageRef struct {
		Alt  string `json:"alt"`
		Path string `json:"path"`
	}
)

// DocumentStructure holds structural metadata parsed from the Markdown.
type DocumentStructure struct {
	Headings   []HeadingRef `json:"headings"`
	Sections   []Section    `json:"sections"`
	Images     []ImageRef   `json:"images"`
	Tables     int          `json:"tables"`
	ListItems  int          `json:"list_items"`
	Paragraphs int          `json:"paragraphs"`
}

// DocumentJSON is the complete JSON export for one normalized document.
type DocumentJSON struct {
	Metadata  Metadata          `json:"metadata"`
	Markdown  string            `json:"markdown"`
	Structure DocumentStructure `json:"structure"`
}

// Fetcher retrieves raw HTML from a URL or path.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor pulls the main content from raw HTML, stripping noise.
type Extractor interface {
	Extract(html string) (string, error)
}

// Normalizer converts HTML into Markdown (the canonical format).
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts Markdown (and metadata) into a final output format.
type Renderer interface {
	Render(markdown string, meta Metadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
