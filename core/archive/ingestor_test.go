package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/core/output"
	"github.com/mholt/archives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func writeTar(t *testing.T, path string, comp archives.Compressor, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	cw, err := comp.OpenWriter(&buf)
	require.NoError(t, err)
	tw := tar.NewWriter(cw)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, cw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func newLayout(t *testing.T) *output.Layout {
	t.Helper()
	layout, err := output.New(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	return layout
}

func TestIngestZip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bundle.zip")
	writeZip(t, src, map[string]string{
		"structuredData.json": `[{"Text":"OVERVIEW"}]`,
		"b.json":              `[]`,
		"figures/fig1.png":    "png",
		"tables/t1.xlsx":      "xlsx",
	})
	layout := newLayout(t)

	bundle, err := New().Ingest(context.Background(), src, layout)
	require.NoError(t, err)
	defer bundle.Cleanup()

	assert.Equal(t, layout.TempDir(), bundle.Dir)
	assert.Equal(t, filepath.Join(bundle.Dir, "b.json"), bundle.Manifest, "first json in lexical order")
	assert.Equal(t, filepath.Join(bundle.Dir, "figures"), bundle.FiguresDir)
	assert.Equal(t, filepath.Join(bundle.Dir, "tables"), bundle.TablesDir)
	assert.DirExists(t, layout.ImagesDir())
	assert.DirExists(t, layout.MarkdownDir())

	require.NoError(t, bundle.Cleanup())
	assert.NoDirExists(t, layout.TempDir())
	assert.NoError(t, bundle.Cleanup(), "second cleanup is a no-op")
}

func TestIngestTarGzWithoutOptionalParts(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bundle.tar.gz")
	writeTar(t, src, archives.Gz{}, map[string]string{"notes.txt": "hello"})
	layout := newLayout(t)

	bundle, err := New().Ingest(context.Background(), src, layout)
	require.NoError(t, err)
	defer bundle.Cleanup()

	assert.Empty(t, bundle.Manifest)
	assert.Empty(t, bundle.FiguresDir)
	assert.Empty(t, bundle.TablesDir)
	assert.FileExists(t, filepath.Join(bundle.Dir, "notes.txt"))
}

func TestIngestCompressedTars(t *testing.T) {
	for _, tc := range []struct {
		ext  string
		comp archives.Compressor
	}{
		{".tar.xz", archives.Xz{}},
		{".tar.bz2", archives.Bz2{}},
	} {
		t.Run("Should extract "+tc.ext, func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "bundle"+tc.ext)
			writeTar(t, src, tc.comp, map[string]string{
				"structuredData.json": `[]`,
				"figures/fig1.png":    "png",
			})

			format, err := Detect(context.Background(), src)
			require.NoError(t, err)
			assert.Equal(t, tc.ext, format)

			layout := newLayout(t)
			bundle, err := New().Ingest(context.Background(), src, layout)
			require.NoError(t, err)
			defer bundle.Cleanup()

			assert.Equal(t, filepath.Join(bundle.Dir, "structuredData.json"), bundle.Manifest)
			assert.FileExists(t, filepath.Join(bundle.FiguresDir, "fig1.png"))
		})
	}
}

func TestIngestClearsStaleWorkspace(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bundle.zip")
	writeZip(t, src, map[string]string{"a.json": "[]"})
	layout := newLayout(t)

	require.NoError(t, os.MkdirAll(layout.TempDir(), 0755))
	stale := filepath.Join(layout.TempDir(), "0-stale.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0644))

	bundle, err := New().Ingest(context.Background(), src, layout)
	require.NoError(t, err)
	defer bundle.Cleanup()

	assert.NoFileExists(t, stale)
	assert.Equal(t, filepath.Join(bundle.Dir, "a.json"), bundle.Manifest)
}

func TestIngestErrors(t *testing.T) {
	t.Run("Should report a missing archive", func(t *testing.T) {
		_, err := New().Ingest(context.Background(), filepath.Join(t.TempDir(), "nope.zip"), newLayout(t))
		require.Error(t, err)
		assert.Equal(t, core.KindNotFound, core.KindOf(err))
	})

	t.Run("Should reject a file that is not an archive", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "doc.txt")
		require.NoError(t, os.WriteFile(src, []byte("just some text"), 0644))
		_, err := New().Ingest(context.Background(), src, newLayout(t))
		require.Error(t, err)
		assert.Equal(t, core.KindUnsupportedInput, core.KindOf(err))
	})

	t.Run("Should reject a compressed file without an archive", func(t *testing.T) {
		var buf bytes.Buffer
		cw, err := archives.Gz{}.OpenWriter(&buf)
		require.NoError(t, err)
		_, err = cw.Write([]byte("just some text"))
		require.NoError(t, err)
		require.NoError(t, cw.Close())
		src := filepath.Join(t.TempDir(), "notes.txt.gz")
		require.NoError(t, os.WriteFile(src, buf.Bytes(), 0644))

		layout := newLayout(t)
		_, err = New().Ingest(context.Background(), src, layout)
		require.Error(t, err)
		assert.Equal(t, core.KindUnsupportedInput, core.KindOf(err))
		assert.NoDirExists(t, layout.TempDir())
	})

	t.Run("Should remove the workspace when an entry escapes it", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "evil.zip")
		writeZip(t, src, map[string]string{"../../escape.txt": "x"})
		layout := newLayout(t)

		_, err := New().Ingest(context.Background(), src, layout)
		require.Error(t, err)
		assert.Equal(t, core.KindUnsupportedInput, core.KindOf(err))
		assert.NoDirExists(t, layout.TempDir())
	})
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "c.gif", "d.jpeg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0755))

	files, err := Files(dir, ".png", ".jpg", ".jpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "d.jpeg"),
	}, files)

	none, err := Files("", ".png")
	require.NoError(t, err)
	assert.Nil(t, none)
}
