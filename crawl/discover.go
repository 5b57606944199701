// Package crawl provides URL discovery for web --all mode.
// It discovers same-domain pages via sitemap.xml and link extraction,
// keeping crawling logic separate from the page pipeline.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/logger"
)

// DefaultMaxPages bounds discovery when no limit is given.
const DefaultMaxPages = 100

// sitemapURL holds a URL from a sitemap.xml.
type sitemapURL struct {
	Loc string `xml:"loc"`
}

// sitemapIndex is the root element of a sitemap.xml.
type sitemapIndex struct {
	URLs []sitemapURL `xml:"url"`
}

// DiscoverAll finds up to maxPages internal URLs starting from baseURL.
// It first tries sitemap.xml, then falls back to link crawling.
// The baseURL itself is always included first.
func DiscoverAll(ctx context.Context, baseURL string, fetcher core.Fetcher, maxPages int) ([]string, error) {
	log := logger.FromContext(ctx)

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, core.Errorf(core.KindUnsupportedInput, "invalid base URL %q", baseURL)
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	domain := parsed.Host

	sitemapURL := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, domain)
	urls, err := discoverFromSitemap(ctx, sitemapURL, baseURL, domain, maxPages, fetcher)
	if err == nil && len(urls) > 0 {
		log.Info("Pages discovered from sitemap", "count", len(urls))
		return urls, nil
	}
	log.Debug("Sitemap unavailable, crawling links", "sitemap", sitemapURL, "error", err)

	urls = discoverFromLinks(ctx, baseURL, domain, maxPages, fetcher)
	log.Info("Pages discovered from links", "count", len(urls))
	return urls, nil
}

// discoverFromSitemap fetches and parses sitemap.xml for internal URLs.
func discoverFromSitemap(ctx context.Context, sitemapURL, baseURL, domain string, maxPages int, fetcher core.Fetcher) ([]string, error) {
	result, err := fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var sitemap sitemapIndex
	if err := xml.Unmarshal([]byte(result.HTML), &sitemap); err != nil {
		return nil, core.E(core.KindDecodeFailure, "parsing sitemap", err)
	}
	if len(sitemap.URLs) == 0 {
		return nil, nil
	}

	queue := NewQueue(maxPages)
	queue.Add(NormalizeURL(baseURL))
	for _, u := range sitemap.URLs {
		if loc := strings.TrimSpace(u.Loc); IsPage(loc, domain) {
			queue.Add(NormalizeURL(loc))
		}
	}
	return queue.All(), nil
}

// discoverFromLinks performs BFS crawling to find internal links.
func discoverFromLinks(ctx context.Context, startURL, domain string, maxPages int, fetcher core.Fetcher) []string {
	log := logger.FromContext(ctx)

	queue := NewQueue(maxPages)
	queue.Add(NormalizeURL(startURL))

	for queue.HasNext() && !queue.Full() {
		if ctx.Err() != nil {
			break
		}
		currentURL := queue.Next()

		result, err := fetcher.Fetch(ctx, currentURL)
		if err != nil {
			log.Debug("Skipping page during discovery", "url", currentURL, "error", err)
			continue
		}

		links, err := extractLinks(result.HTML, currentURL)
		if err != nil {
			continue
		}

		for _, link := range links {
			if IsPage(link, domain) {
				queue.Add(NormalizeURL(link))
			}
		}
	}

	return queue.All()
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(baseURL)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		resolved := resolveURL(href, base)
		if resolved != "" {
			links = append(links, resolved)
		}
	})

	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	// Skip mailto, javascript, etc.
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	// Strip fragments.
	resolved.Fragment = ""
	return resolved.String()
}
