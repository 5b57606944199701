package asset

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"svg": true, "webp": true, "bmp": true,
}

// IsImageExt reports whether ext (with or without the dot, any case) is a
// known image extension.
func IsImageExt(ext string) bool {
	return imageExts[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// SanitizeName keeps letters, digits and ._- from name.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DerivedName returns the sanitized last path segment of ref when it carries
// a known image extension, or "".
func DerivedName(ref string) string {
	if ref == "" || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return ""
	}
	p := ref
	if u, err := url.Parse(ref); err == nil {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	name := SanitizeName(base)
	if strings.Trim(name, ".") == "" || !IsImageExt(path.Ext(name)) {
		return ""
	}
	return name
}

// extFromContentType returns the file extension for an image/* content type,
// or "" for anything else.
func extFromContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	sub, ok := strings.CutPrefix(strings.ToLower(mediaType), "image/")
	if !ok || sub == "" {
		return ""
	}
	if sub == "svg+xml" {
		return "svg"
	}
	return SanitizeName(sub)
}

// extFromURL returns the known image extension of ref's path, or "".
func extFromURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if !imageExts[ext] {
		return ""
	}
	return ext
}
