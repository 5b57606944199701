package asset

import (
	"context"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/logger"
)

// relativeBounds start an attribute value, CSS url() or srcset entry. A
// relative source is only replaced right after one of them, since the same
// text also occurs inside longer URLs.
var relativeBounds = []string{`"`, `'`, "(", "=", " ", ","}

// companionAttrs name lazy-loading attributes whose URL can name a data URI
// placeholder, in priority order.
var companionAttrs = []string{"data-src", "data-original", "data-lazy-src"}

// Stats counts the outcome of a localization pass.
type Stats struct {
	Found     int
	Localized int
	Failed    int
}

// Localizer rewrites every <img src> of a page to a local copy.
type Localizer struct {
	resolver *Resolver
}

// NewLocalizer creates a Localizer backed by resolver.
func NewLocalizer(resolver *Resolver) *Localizer {
	return &Localizer{resolver: resolver}
}

// Localize resolves each distinct img src in rawHTML and replaces every
// literal occurrence of it (raw or HTML-escaped) with the local link. The
// absolute URL a relative src resolves to is replaced as well.
// References that fail stay as they were. When dest is set the rewritten
// HTML is written there.
func (l *Localizer) Localize(ctx context.Context, run *Run, rawHTML, baseURL, dest string) (string, Stats, error) {
	log := logger.FromContext(ctx)

	refs, err := imageRefs(rawHTML)
	if err != nil {
		return "", Stats{}, err
	}

	stats := Stats{Found: len(refs)}
	links := make(map[string]string, len(refs))
	for _, ref := range refs {
		name, err := l.resolver.Resolve(ctx, run, ref, baseURL)
		if err != nil {
			stats.Failed++
			log.Warn("Image not localized", "src", abbreviate(ref.Src), "kind", core.KindOf(err), "error", err)
			continue
		}
		stats.Localized++
		link := run.Link(name)
		links[ref.Src] = link
		if abs, err := absoluteURL(ref.Src, baseURL); err == nil && abs != ref.Src {
			links[abs] = link
		}
	}

	out := replaceAll(rawHTML, links)

	if dest != "" {
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return "", stats, core.E(core.KindWriteFailure, "creating "+filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, []byte(out), 0644); err != nil {
			return "", stats, core.E(core.KindWriteFailure, "writing "+dest, err)
		}
	}

	log.Info("Images localized",
		"found", stats.Found,
		"localized", stats.Localized,
		"failed", stats.Failed,
		"counter_named", run.Counter(),
	)
	return out, stats, nil
}

// imageRefs lists distinct non-empty img src values in document order.
func imageRefs(rawHTML string) ([]Reference, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, core.E(core.KindDecodeFailure, "parsing HTML", err)
	}

	seen := make(map[string]bool)
	var refs []Reference
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" || seen[src] {
			return
		}
		seen[src] = true

		ref := Reference{Src: src}
		for _, attr := range companionAttrs {
			if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" && v != src {
				ref.Companion = v
				break
			}
		}
		refs = append(refs, ref)
	})
	return refs, nil
}

// replaceAll substitutes each key of links, longest first so a URL that is a
// prefix of another does not clobber it.
func replaceAll(text string, links map[string]string) string {
	if len(links) == 0 {
		return text
	}
	srcs := make([]string, 0, len(links))
	for src := range links {
		srcs = append(srcs, src)
	}
	sort.Slice(srcs, func(i, j int) bool {
		if len(srcs[i]) != len(srcs[j]) {
			return len(srcs[i]) > len(srcs[j])
		}
		return srcs[i] < srcs[j]
	})

	var pairs []string
	for _, src := range srcs {
		forms := []string{src}
		if escaped := html.EscapeString(src); escaped != src {
			forms = append(forms, escaped)
		}
		for _, form := range forms {
			if !isRelative(src) {
				pairs = append(pairs, form, links[src])
				continue
			}
			for _, b := range relativeBounds {
				pairs = append(pairs, b+form, b+links[src])
			}
		}
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func isRelative(src string) bool {
	return !strings.Contains(src, "://") && !strings.HasPrefix(src, "data:")
}

func abbreviate(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
