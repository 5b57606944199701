// Package output owns the on-disk layout of a run.
// Every run writes under one output root:
//
//	<root>/images/                flat directory of localized assets
//	<root>/markdown/content.md    archive path
//	<root>/website_content.md     HTML path
//	<root>/website_content.html   HTML path, localized copy of the page
//	<root>/temp_extraction/       ephemeral bundle workspace
//
// In crawl mode each page gets its own root named after its URL path.
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gosimple/slug"
)

const (
	ImagesDirName   = "images"
	MarkdownDirName = "markdown"
	TempDirName     = "temp_extraction"

	ArchiveMarkdownName = "content.md"
	WebMarkdownName     = "website_content.md"
	WebHTMLName         = "website_content.html"
)

// Layout resolves paths under one output root.
type Layout struct {
	Root string
}

// New creates a Layout rooted at root, creating the directory.
// If root is empty, it defaults to the current working directory.
func New(root string) (*Layout, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, core.E(core.KindWriteFailure, "creating output directory", err)
	}

	return &Layout{Root: root}, nil
}

// ImagesDir returns <root>/images.
func (l *Layout) ImagesDir() string { return filepath.Join(l.Root, ImagesDirName) }

// MarkdownDir returns <root>/markdown.
func (l *Layout) MarkdownDir() string { return filepath.Join(l.Root, MarkdownDirName) }

// TempDir returns <root>/temp_extraction.
func (l *Layout) TempDir() string { return filepath.Join(l.Root, TempDirName) }

// ArchiveMarkdownPath returns <root>/markdown/content.md.
func (l *Layout) ArchiveMarkdownPath() string {
	return filepath.Join(l.MarkdownDir(), ArchiveMarkdownName)
}

// WebMarkdownPath returns <root>/website_content.md.
func (l *Layout) WebMarkdownPath() string { return filepath.Join(l.Root, WebMarkdownName) }

// WebHTMLPath returns <root>/website_content.html.
func (l *Layout) WebHTMLPath() string { return filepath.Join(l.Root, WebHTMLName) }

// EnsureImagesDir creates the images directory.
func (l *Layout) EnsureImagesDir() error {
	if err := os.MkdirAll(l.ImagesDir(), 0755); err != nil {
		return core.E(core.KindWriteFailure, "creating images directory", err)
	}
	return nil
}

// Write writes data to path, creating parent directories.
func (l *Layout) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return core.E(core.KindWriteFailure, "creating directory "+filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return core.E(core.KindWriteFailure, "writing file "+path, err)
	}
	return nil
}

// PageLayout returns the layout for one crawled page, mirroring its URL path.
// Example: https://site.com/docs/intro → <root>/docs-intro
func (l *Layout) PageLayout(rawURL string) (*Layout, error) {
	return New(filepath.Join(l.Root, PageDirName(rawURL)))
}

// PageDirName converts a URL into a flat directory name.
// Example: https://example.com/docs/intro → docs-intro, https://example.com/ → index
func PageDirName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return slug.Make(rawURL)
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return "index"
	}
	name := slug.Make(strings.ReplaceAll(path, "/", " "))
	if name == "" {
		return "index"
	}
	return name
}
