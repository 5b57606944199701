package asset

import (
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// remoteImageRE matches absolute image URLs; group 1 is the filename.
var remoteImageRE = regexp.MustCompile(`(?i)https?://[^\s"'<>()]+?/([^/\s"'<>()]+?\.(?:jpe?g|png|svg|gif))`)

// Rewriter points remote image URLs in text at their local copies. It never
// touches the network: a URL is rewritten only when its file is recorded in
// the run or already present in the images directory.
type Rewriter struct{}

// NewRewriter creates a Rewriter.
func NewRewriter() *Rewriter {
	return &Rewriter{}
}

// Rewrite returns text with every localizable remote image URL replaced by
// run.Link(filename), and the number of distinct URLs rewritten. Applying it
// to its own output changes nothing.
func (w *Rewriter) Rewrite(text string, run *Run) (string, int) {
	links := make(map[string]string)

	add := func(u, fallback string) {
		if _, ok := links[u]; ok {
			return
		}
		name, ok := run.Lookup(u)
		if !ok {
			name = SanitizeName(fallback)
		}
		if name == "" || !w.available(run, name) {
			return
		}
		links[u] = run.Link(name)
	}

	for _, m := range remoteImageRE.FindAllStringSubmatch(text, -1) {
		add(m[0], m[1])
	}
	for _, src := range remoteImgSrcs(text) {
		add(src, DerivedName(src))
	}

	return replaceAll(text, links), len(links)
}

func (w *Rewriter) available(run *Run, name string) bool {
	if run.Claimed(name) {
		return true
	}
	info, err := os.Stat(run.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// remoteImgSrcs returns absolute http(s) img src values the URL pattern may
// have missed, such as extensionless or query-string URLs.
func remoteImgSrcs(text string) []string {
	if !strings.Contains(strings.ToLower(text), "<img") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil
	}
	var srcs []string
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		lower := strings.ToLower(src)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			srcs = append(srcs, src)
		}
	})
	return srcs
}
