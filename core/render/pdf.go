// Package render — PDF renderer.
// Converts Markdown into a styled PDF using gofpdf.
// Handles headings (variable font sizes), paragraphs, lists, table rows and
// local png/jpg/gif images.
package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/jung-kurt/gofpdf"
)

var (
	numberedRegex  = regexp.MustCompile(`^\d+\.\s`)
	imageLineRegex = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)\s]+)\)$`)
	italicRegex    = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	inlineCode     = regexp.MustCompile("`([^`]+)`")
	linkSyntax     = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

var pdfImageTypes = map[string]string{".png": "PNG", ".jpg": "JPG", ".jpeg": "JPG", ".gif": "GIF"}

// PDFRenderer renders Markdown content as a PDF document. Relative image
// paths are resolved against BaseDir, the directory of the Markdown file.
type PDFRenderer struct {
	BaseDir string
}

// NewPDFRenderer creates a PDFRenderer resolving images from baseDir.
func NewPDFRenderer(baseDir string) *PDFRenderer {
	return &PDFRenderer{BaseDir: baseDir}
}

// Render converts Markdown into PDF bytes.
func (r *PDFRenderer) Render(markdown string, meta core.Metadata) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if meta.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(meta.Title), "", "L", false)
		pdf.Ln(4)
	}

	if meta.Source != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr("Source: "+meta.Source), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}

	for _, line := range strings.Split(Clean(markdown), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			pdf.Ln(3)

		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			renderHeading(pdf, tr(strings.TrimSpace(trimmed[level:])), level)

		case imageLineRegex.MatchString(trimmed):
			m := imageLineRegex.FindStringSubmatch(trimmed)
			r.renderImage(pdf, tr, m[1], m[2])

		case strings.HasPrefix(trimmed, "|"):
			renderTableRow(pdf, tr, trimmed)

		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("• "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)

		case numberedRegex.MatchString(trimmed):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)

		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// renderImage embeds a local image scaled to the page width. Remote,
// missing or unsupported images are written as a caption line instead.
func (r *PDFRenderer) renderImage(pdf *gofpdf.Fpdf, tr func(string) string, alt, ref string) {
	caption := func() {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr("[image: "+alt+"]"), "", "L", false)
	}

	imgType, ok := pdfImageTypes[strings.ToLower(filepath.Ext(ref))]
	if !ok || strings.Contains(ref, "://") {
		caption()
		return
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.BaseDir, filepath.FromSlash(ref))
	}

	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	info := pdf.RegisterImageOptions(path, opts)
	if !pdf.Ok() || info == nil {
		pdf.ClearError()
		caption()
		return
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := info.Width()
	if avail := pageW - left - right; width > avail || width <= 0 {
		width = avail
	}
	pdf.ImageOptions(path, left, pdf.GetY(), width, 0, true, opts, 0, "")
	if !pdf.Ok() {
		pdf.ClearError()
		caption()
		return
	}
	pdf.Ln(2)
}

// renderTableRow writes one Markdown table row in monospace. Separator rows
// are skipped.
func renderTableRow(pdf *gofpdf.Fpdf, tr func(string) string, row string) {
	if tableSepRegex.MatchString(row) {
		return
	}
	cells := strings.Split(strings.Trim(row, "|"), " | ")
	for i, c := range cells {
		cells[i] = strings.ReplaceAll(strings.TrimSpace(c), `\|`, "|")
	}
	pdf.SetFont("Courier", "", 9)
	pdf.MultiCell(0, 4.5, tr(strings.Join(cells, "  |  ")), "", "L", false)
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	pdf.Ln(2)
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = italicRegex.ReplaceAllString(text, " $1 ")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = linkSyntax.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
