// Package archive unpacks extraction bundles into a temporary workspace
// under the run's output root and locates the manifest, figures and tables.
//
// The workspace is always removed: Ingest removes it itself when extraction
// fails, and callers defer Bundle.Cleanup on success.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/core/output"
	"github.com/gaurav-prasanna/docmark/logger"
)

const (
	FiguresDirName = "figures"
	TablesDirName  = "tables"
	manifestGlob   = "*.json"
)

// Bundle is an unpacked extraction bundle. Empty paths mean the part is absent.
type Bundle struct {
	Dir        string
	Manifest   string
	FiguresDir string
	TablesDir  string
}

// Cleanup removes the workspace. It is safe to call more than once.
func (b *Bundle) Cleanup() error {
	if b == nil || b.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(b.Dir); err != nil {
		return fmt.Errorf("removing workspace %s: %w", b.Dir, err)
	}
	return nil
}

// Ingestor unpacks archives.
type Ingestor struct{}

// New creates an Ingestor.
func New() *Ingestor {
	return &Ingestor{}
}

// Ingest validates archivePath, prepares images/, markdown/ and
// temp_extraction/ under the layout root, and extracts the archive into
// temp_extraction/.
func (in *Ingestor) Ingest(ctx context.Context, archivePath string, layout *output.Layout) (*Bundle, error) {
	log := logger.FromContext(ctx)

	format, err := Detect(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{layout.ImagesDir(), layout.MarkdownDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, core.E(core.KindWriteFailure, "creating "+dir, err)
		}
	}

	// A workspace left by an interrupted run must not leak into this one.
	tempDir := layout.TempDir()
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, core.E(core.KindWriteFailure, "clearing stale workspace", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, core.E(core.KindWriteFailure, "creating workspace", err)
	}
	bundle := &Bundle{Dir: tempDir}

	log.Info("Extracting archive", "archive", archivePath, "format", format)
	if err := extract(ctx, archivePath, tempDir); err != nil {
		if cerr := bundle.Cleanup(); cerr != nil {
			log.Error("Workspace cleanup failed", "error", cerr)
		}
		return nil, err
	}

	bundle.Manifest = findManifest(tempDir)
	bundle.FiguresDir = existingDir(filepath.Join(tempDir, FiguresDirName))
	bundle.TablesDir = existingDir(filepath.Join(tempDir, TablesDirName))

	log.Debug("Bundle located",
		"manifest", bundle.Manifest,
		"figures", bundle.FiguresDir,
		"tables", bundle.TablesDir,
	)
	return bundle, nil
}

// Detect checks that path exists and identifies its archive format by name
// and content. It returns the format's extension, e.g. ".zip" or ".tar.xz".
func Detect(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Errorf(core.KindNotFound, "archive not found at path: %s", path)
		}
		return "", core.E(core.KindNotFound, "stat archive", err)
	}
	if info.IsDir() {
		return "", core.Errorf(core.KindUnsupportedInput, "%s is a directory, not an archive", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", core.E(core.KindDecodeFailure, "sniffing archive type", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", core.E(core.KindNotFound, "open archive", err)
	}
	defer file.Close()

	format, err := identify(ctx, path, file)
	if err != nil {
		if core.IsKind(err, core.KindUnsupportedInput) {
			return "", core.Errorf(core.KindUnsupportedInput, "file must be an archive, got %s", mtype.String())
		}
		return "", err
	}
	return format.Extension(), nil
}

// findManifest returns the first *.json at the workspace root in lexical order.
func findManifest(dir string) string {
	matches, err := filepath.Glob(filepath.Join(dir, manifestGlob))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			return m
		}
	}
	return ""
}

func existingDir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return ""
}

// Files lists the regular files directly under dir whose extension is in
// exts (lower-case, with dot), sorted by name.
func Files(dir string, exts ...string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[e] = true
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if len(exts) > 0 && !allowed[lowerExt(e.Name())] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
