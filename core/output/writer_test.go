package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	t.Run("Should resolve fixed paths under the root", func(t *testing.T) {
		root := t.TempDir()
		l, err := New(root)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(root, "images"), l.ImagesDir())
		assert.Equal(t, filepath.Join(root, "markdown", "content.md"), l.ArchiveMarkdownPath())
		assert.Equal(t, filepath.Join(root, "website_content.md"), l.WebMarkdownPath())
		assert.Equal(t, filepath.Join(root, "temp_extraction"), l.TempDir())
	})

	t.Run("Should create parent directories when writing", func(t *testing.T) {
		l, err := New(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, l.Write(l.ArchiveMarkdownPath(), []byte("# hi\n")))
		data, err := os.ReadFile(l.ArchiveMarkdownPath())
		require.NoError(t, err)
		assert.Equal(t, "# hi\n", string(data))
	})
}

func TestPageDirName(t *testing.T) {
	cases := map[string]string{
		"https://example.com/":           "index",
		"https://example.com":            "index",
		"https://example.com/docs/intro": "docs-intro",
		"https://example.com/About_Us/":  "about_us",
	}
	for in, want := range cases {
		assert.Equal(t, want, PageDirName(in), in)
	}
}
