package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/mholt/archives"
)

// identify matches r against the registered archive formats. Compressed
// streams that do not wrap an archive are rejected.
func identify(ctx context.Context, path string, r io.Reader) (archives.Format, error) {
	format, _, err := archives.Identify(ctx, filepath.Base(path), r)
	if errors.Is(err, archives.NoMatch) {
		return nil, core.Errorf(core.KindUnsupportedInput, "no archive format matches %s", path)
	}
	if err != nil {
		return nil, core.E(core.KindDecodeFailure, "identify archive", err)
	}
	if ca, ok := format.(archives.CompressedArchive); ok && ca.Extraction == nil {
		return nil, core.Errorf(core.KindUnsupportedInput, "%s is compressed but holds no archive", path)
	}
	if _, ok := format.(archives.Extractor); !ok {
		return nil, core.Errorf(core.KindUnsupportedInput, "%s cannot be extracted", format.Extension())
	}
	return format, nil
}

func extract(ctx context.Context, archivePath, dest string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return core.E(core.KindNotFound, "open archive", err)
	}
	defer file.Close()

	format, err := identify(ctx, archivePath, file)
	if err != nil {
		return err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return core.E(core.KindDecodeFailure, "rewind archive", err)
	}

	err = format.(archives.Extractor).Extract(ctx, file, func(ctx context.Context, f archives.FileInfo) error {
		target, err := safeJoin(dest, f.NameInArchive)
		if err != nil {
			return err
		}
		if f.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return core.E(core.KindWriteFailure, "creating "+target, err)
			}
			return nil
		}
		// Links and devices have no place in a bundle.
		if f.LinkTarget != "" || !f.Mode().IsRegular() {
			return nil
		}
		rc, err := f.Open()
		if err != nil {
			return core.E(core.KindDecodeFailure, "open "+f.NameInArchive, err)
		}
		defer rc.Close()
		return writeEntry(target, rc)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, zip.ErrInsecurePath):
		return core.E(core.KindUnsupportedInput, "open zip", err)
	case core.KindOf(err) != core.KindInternal:
		return err
	default:
		return core.E(core.KindDecodeFailure, "extracting "+format.Extension(), err)
	}
}

func writeEntry(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return core.E(core.KindWriteFailure, "creating "+filepath.Dir(target), err)
	}
	out, err := os.Create(target)
	if err != nil {
		return core.E(core.KindWriteFailure, "creating "+target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return core.E(core.KindWriteFailure, "writing "+target, err)
	}
	if err := out.Close(); err != nil {
		return core.E(core.KindWriteFailure, "closing "+target, err)
	}
	return nil
}

// safeJoin joins an archive entry name onto dest, rejecting names that would
// escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", core.Errorf(core.KindUnsupportedInput, "archive entry %q escapes the workspace", name)
	}
	return target, nil
}

func lowerExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
