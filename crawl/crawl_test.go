package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaurav-prasanna/docmark/core/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func site(t *testing.T, withSitemap bool) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		if !withSitemap {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<urlset><url><loc>%[1]s/docs/a</loc></url><url><loc>%[1]s/logo.png</loc></url>`+
			`<url><loc>https://elsewhere.example/x</loc></url></urlset>`, srv.URL)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<a href="/docs/a#top">A</a><a href="/docs/b/">B</a><a href="mailto:x@y">m</a>`+
				`<a href="/img.jpg">i</a><a href="https://other.example/">o</a>`)
		case "/docs/a":
			fmt.Fprint(w, `<a href="/">home</a><a href="c">C</a>`)
		default:
			fmt.Fprint(w, `<p>leaf</p>`)
		}
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscoverFromSitemap(t *testing.T) {
	srv := site(t, true)
	urls, err := DiscoverAll(context.Background(), srv.URL+"/", fetch.New("", 0), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/", srv.URL + "/docs/a"}, urls)
}

func TestDiscoverFromLinks(t *testing.T) {
	srv := site(t, false)
	urls, err := DiscoverAll(context.Background(), srv.URL+"/", fetch.New("", 0), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/",
		srv.URL + "/docs/a",
		srv.URL + "/docs/b",
		srv.URL + "/docs/c",
	}, urls)

	limited, err := DiscoverAll(context.Background(), srv.URL+"/", fetch.New("", 0), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDiscoverInvalidBase(t *testing.T) {
	_, err := DiscoverAll(context.Background(), "not a url", fetch.New("", 0), 1)
	assert.Error(t, err)
}

func TestRules(t *testing.T) {
	assert.True(t, IsSameDomain("https://a.com/x", "a.com"))
	assert.True(t, IsSameDomain("https://www.A.com/x", "a.com"))
	assert.False(t, IsSameDomain("https://b.com/x", "a.com"))
	assert.True(t, IsStaticAsset("https://a.com/x.PNG"))
	assert.False(t, IsStaticAsset("https://a.com/docs"))

	assert.True(t, IsPage("https://a.com/docs", "a.com"))
	assert.False(t, IsPage("ftp://a.com/docs", "a.com"))
	assert.False(t, IsPage("https://a.com/file.pdf", "a.com"))

	assert.Equal(t, "https://a.com/docs", NormalizeURL("https://A.com/docs/#frag"))
	assert.Equal(t, "https://a.com/", NormalizeURL("https://a.com/"))
	assert.Equal(t, "https://a.com/", NormalizeURL("https://a.com"))
}

func TestQueue(t *testing.T) {
	q := NewQueue(3)
	assert.True(t, q.Add("a"))
	assert.True(t, q.Add("b"))
	assert.False(t, q.Add("a"), "duplicates are ignored")
	assert.Equal(t, 2, q.Len())
	require.True(t, q.HasNext())
	assert.Equal(t, "a", q.Next())
	assert.Equal(t, "b", q.Next())
	assert.False(t, q.HasNext())

	assert.True(t, q.Add("c"))
	assert.True(t, q.Full())
	assert.False(t, q.Add("d"), "full queue refuses new pages")
	assert.Equal(t, []string{"a", "b", "c"}, q.All())
}
