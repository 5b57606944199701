// Package assemble builds the canonical Markdown document: structured
// blocks from the manifest, then a Figures section, then a Tables section.
package assemble

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/otiai10/copy"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/core/archive"
	"github.com/gaurav-prasanna/docmark/core/asset"
	"github.com/gaurav-prasanna/docmark/core/output"
	"github.com/gaurav-prasanna/docmark/core/render"
	"github.com/gaurav-prasanna/docmark/core/structure"
	"github.com/gaurav-prasanna/docmark/core/table"
	"github.com/gaurav-prasanna/docmark/logger"
)

const (
	FiguresHeading = "Figures"
	TablesHeading  = "Tables"

	// figureLinkPrefix points from markdown/content.md at the images directory.
	figureLinkPrefix = "../" + output.ImagesDirName + "/"
)

var (
	figureExts      = []string{".png", ".jpg", ".jpeg"}
	spreadsheetExts = []string{".xlsx"}

	blankRunRegex = regexp.MustCompile(`\n{3,}`)
	emptyBullet   = regexp.MustCompile(`\* \n`)
)

// Report counts what an assembly pass produced and skipped.
type Report struct {
	Blocks  int
	Figures int
	Tables  int
	Skipped int

	// Rules counts manifest elements by the rule that decided them.
	Rules map[string]int
}

// Assembler builds and writes documents.
type Assembler struct {
	normalizer *structure.Normalizer
	renderer   *render.MarkdownRenderer
}

// New creates an Assembler.
func New() *Assembler {
	return &Assembler{
		normalizer: structure.New(),
		renderer:   render.NewMarkdownRenderer(),
	}
}

// Archive builds the document for an unpacked bundle. Figures are copied
// into run's images directory. Per-element failures are logged and counted;
// only the document itself is returned.
func (a *Assembler) Archive(ctx context.Context, bundle *archive.Bundle, run *asset.Run) (core.Document, Report) {
	log := logger.FromContext(ctx)
	var doc core.Document
	var rep Report

	if bundle.Manifest != "" {
		texts, err := structure.ReadManifest(bundle.Manifest)
		if err != nil {
			rep.Skipped++
			log.Warn("Manifest unreadable, continuing without it", "manifest", bundle.Manifest, "error", err)
		} else {
			blocks := a.normalizer.Normalize(texts)
			rep.Blocks = len(blocks)
			doc.Append(blocks...)
			log.Debug("Manifest normalized", "elements", len(texts), "blocks", len(blocks))

			rep.Rules = tally(texts)
			for _, name := range structure.Rules() {
				if n := rep.Rules[name]; n > 0 {
					log.Debug("Rule applied", "rule", name, "elements", n)
				}
			}
		}
	}

	figures := a.figures(ctx, bundle.FiguresDir, run, &rep)
	if len(figures) > 0 {
		doc.Append(core.Heading(2, FiguresHeading))
		doc.Append(figures...)
	}

	tables := a.tables(ctx, bundle.TablesDir, &rep)
	if len(tables) > 0 {
		doc.Append(core.Heading(2, TablesHeading))
		doc.Append(tables...)
	}

	return doc, rep
}

func tally(texts []string) map[string]int {
	counts := make(map[string]int)
	for _, text := range texts {
		if name := structure.Match(text); name != "" {
			counts[name]++
		}
	}
	return counts
}

func (a *Assembler) figures(ctx context.Context, dir string, run *asset.Run, rep *Report) []core.Block {
	log := logger.FromContext(ctx)

	files, err := archive.Files(dir, figureExts...)
	if err != nil {
		rep.Skipped++
		log.Warn("Figures unreadable", "dir", dir, "error", err)
		return nil
	}

	var blocks []core.Block
	for _, src := range files {
		base := filepath.Base(src)
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), ".")
		name, counted := run.Name(asset.SanitizeName(base), ext)

		if err := copy.Copy(src, run.Path(name)); err != nil {
			rep.Skipped++
			log.Warn("Figure not copied", "figure", base, "error", err)
			continue
		}
		run.Record(core.OriginArchivedFigure, archive.FiguresDirName+"/"+base, name, counted)
		blocks = append(blocks, core.Image(stem(base), figureLinkPrefix+name))
		rep.Figures++
	}
	return blocks
}

func (a *Assembler) tables(ctx context.Context, dir string, rep *Report) []core.Block {
	log := logger.FromContext(ctx)

	files, err := archive.Files(dir, spreadsheetExts...)
	if err != nil {
		rep.Skipped++
		log.Warn("Tables unreadable", "dir", dir, "error", err)
		return nil
	}

	var blocks []core.Block
	for _, src := range files {
		rows, err := table.FromSpreadsheet(src)
		if err != nil {
			rep.Skipped++
			log.Warn("Table skipped", "table", filepath.Base(src), "kind", core.KindOf(err), "error", err)
			continue
		}
		if len(rows) == 0 {
			log.Debug("Table is empty", "table", filepath.Base(src))
			continue
		}
		blocks = append(blocks,
			core.Heading(3, stem(filepath.Base(src))),
			core.Table(rows),
		)
		rep.Tables++
	}
	return blocks
}

// Serialize renders blocks to Markdown. A blank line follows every block
// except list items, which are newline-separated with a blank line after
// the last item of a run.
func Serialize(doc core.Document) string {
	var b strings.Builder
	for i, block := range doc.Blocks {
		switch block.Kind {
		case core.BlockHeading:
			b.WriteString(strings.Repeat("#", block.Level) + " " + block.Text + "\n\n")
		case core.BlockParagraph:
			b.WriteString(block.Text + "\n\n")
		case core.BlockListItem:
			b.WriteString(block.Text + "\n")
			if i+1 == len(doc.Blocks) || doc.Blocks[i+1].Kind != core.BlockListItem {
				b.WriteString("\n")
			}
		case core.BlockImage:
			b.WriteString("![" + block.Alt + "](" + block.Path + ")\n\n")
		case core.BlockTable:
			b.WriteString(table.Render(block.Rows) + "\n\n")
		}
	}

	md := blankRunRegex.ReplaceAllString(b.String(), "\n\n")
	return emptyBullet.ReplaceAllString(md, "* ")
}

// Write renders markdown through the final cleanup and writes it to path.
func (a *Assembler) Write(layout *output.Layout, path, markdown string, meta core.Metadata) (string, error) {
	data, err := a.renderer.Render(markdown, meta)
	if err != nil {
		return "", core.E(core.KindInternal, "rendering markdown", err)
	}
	if err := layout.Write(path, data); err != nil {
		return "", err
	}
	return string(data), nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
