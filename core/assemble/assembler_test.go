package assemble

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/core/archive"
	"github.com/gaurav-prasanna/docmark/core/asset"
	"github.com/gaurav-prasanna/docmark/core/output"
	"github.com/gaurav-prasanna/docmark/core/structure"
)

func TestSerialize(t *testing.T) {
	var doc core.Document
	doc.Append(
		core.Heading(2, "OVERVIEW"),
		core.Paragraph("Hello world."),
		core.ListItem("* one"),
		core.ListItem("* two"),
		core.Paragraph("After the list."),
		core.Image("fig", "../images/fig.png"),
		core.Table([][]string{{"a", "b"}, {"1"}}),
		core.ListItem("1. last"),
	)

	want := "## OVERVIEW\n\nHello world.\n\n* one\n* two\n\nAfter the list.\n\n" +
		"![fig](../images/fig.png)\n\n| a | b |\n| --- | --- |\n| 1 |  |\n\n1. last\n\n"
	assert.Equal(t, want, Serialize(doc))
}

func TestSerializeOverview(t *testing.T) {
	var doc core.Document
	doc.Append(core.Heading(2, "OVERVIEW"), core.Paragraph("Hello world."))
	assert.Equal(t, "## OVERVIEW\n\nHello world.\n\n", Serialize(doc))
	assert.Equal(t, "", Serialize(core.Document{}))
}

func writeSheet(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func newBundle(t *testing.T) (*archive.Bundle, *asset.Run) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, output.TempDirName)
	bundle := &archive.Bundle{
		Dir:        dir,
		Manifest:   filepath.Join(dir, "structuredData.json"),
		FiguresDir: filepath.Join(dir, archive.FiguresDirName),
		TablesDir:  filepath.Join(dir, archive.TablesDirName),
	}
	require.NoError(t, os.MkdirAll(bundle.FiguresDir, 0755))
	require.NoError(t, os.MkdirAll(bundle.TablesDir, 0755))
	return bundle, asset.NewRun(filepath.Join(root, output.ImagesDirName))
}

func TestArchive(t *testing.T) {
	bundle, run := newBundle(t)
	require.NoError(t, os.WriteFile(bundle.Manifest,
		[]byte(`{"elements":[{"Text":"User Guide"},{"Text":"- item one"},{"Text":"7"},{"Text":"Plain body text."}]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(bundle.FiguresDir, "b.png"), []byte("B"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(bundle.FiguresDir, "a.jpg"), []byte("A"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(bundle.FiguresDir, "notes.txt"), []byte("x"), 0644))
	writeSheet(t, filepath.Join(bundle.TablesDir, "t1.xlsx"), [][]any{{"a", "b"}, {"1"}})
	require.NoError(t, os.WriteFile(filepath.Join(bundle.TablesDir, "t2.xlsx"), []byte("broken"), 0644))

	doc, rep := New().Archive(context.Background(), bundle, run)

	assert.Equal(t, Report{
		Blocks: 3, Figures: 2, Tables: 1, Skipped: 1,
		Rules: map[string]int{
			structure.RuleHeading1:   1,
			structure.RuleBullet:     1,
			structure.RulePageNumber: 1,
			structure.RuleParagraph:  1,
		},
	}, rep)
	assert.Equal(t, "# User Guide\n\n* item one\n\nPlain body text.\n\n"+
		"## Figures\n\n![a](../images/a.jpg)\n\n![b](../images/b.png)\n\n"+
		"## Tables\n\n### t1\n\n| a | b |\n| --- | --- |\n| 1 |  |\n\n", Serialize(doc))

	data, err := os.ReadFile(run.Path("a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))
	require.Len(t, run.Assets(), 2)
	assert.Equal(t, core.OriginArchivedFigure, run.Assets()[0].Origin)
}

func TestArchiveFigureNameCollision(t *testing.T) {
	bundle, run := newBundle(t)
	bundle.Manifest = ""
	bundle.TablesDir = ""
	require.NoError(t, os.WriteFile(filepath.Join(bundle.FiguresDir, "fig.png"), []byte("F"), 0644))
	run.Record(core.OriginRemoteURL, "https://x/fig.png", "fig.png", false)

	doc, rep := New().Archive(context.Background(), bundle, run)
	assert.Equal(t, 1, rep.Figures)
	assert.Equal(t, "## Figures\n\n![fig](../images/image_1.png)\n\n", Serialize(doc))
	assert.FileExists(t, run.Path("image_1.png"))
}

func TestArchiveEmptyBundle(t *testing.T) {
	bundle, run := newBundle(t)
	bundle.Manifest = ""

	doc, rep := New().Archive(context.Background(), bundle, run)
	assert.Empty(t, doc.Blocks, "empty sections are omitted")
	assert.Equal(t, Report{}, rep)
}

func TestArchiveBadManifest(t *testing.T) {
	bundle, run := newBundle(t)
	require.NoError(t, os.WriteFile(bundle.Manifest, []byte("{not json"), 0644))

	doc, rep := New().Archive(context.Background(), bundle, run)
	assert.Empty(t, doc.Blocks)
	assert.Equal(t, 1, rep.Skipped)
}

func TestWrite(t *testing.T) {
	layout, err := output.New(t.TempDir())
	require.NoError(t, err)

	out, err := New().Write(layout, layout.ArchiveMarkdownPath(), "a\r\nb_x000D_\n\n\n\nc", core.Metadata{})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n\nc", out)

	data, err := os.ReadFile(layout.ArchiveMarkdownPath())
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}
