// Package crawl — page filtering rules.
// Decides which discovered links are pages worth converting and
// canonicalizes them so each page is processed once.
package crawl

import (
	"net/url"
	"path"
	"strings"
)

// nonPageExtensions are link targets that are assets or downloads, not pages.
var nonPageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true, ".json": true, ".xml": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// IsSameDomain reports whether rawURL is on host, ignoring case and a
// leading "www.".
func IsSameDomain(rawURL string, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return bareHost(parsed.Host) == bareHost(host)
}

// IsStaticAsset reports whether rawURL points at an asset or download
// rather than a page.
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return nonPageExtensions[strings.ToLower(path.Ext(parsed.Path))]
}

// IsPage reports whether rawURL is an http(s) page on host.
func IsPage(rawURL, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}
	return IsSameDomain(rawURL, host) && !IsStaticAsset(rawURL)
}

// NormalizeURL canonicalizes a page URL for deduplication: lower-case host,
// no fragment, no trailing slash except on the root.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String()
}

func bareHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
