package asset

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/logger"
	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultChunkSize = 8192
	defaultMaxBytes  = 20 << 20
	defaultExt       = "jpg"

	imageAccept = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"
)

// Options configures a Resolver. Zero values take defaults.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBytes caps a single download.
	MaxBytes  int64
	ChunkSize int
}

// Reference is one image reference found in a document. Companion is an
// optional sibling URL (e.g. data-src) used to name data URI payloads.
type Reference struct {
	Src       string
	Companion string
}

// Resolver turns image references into files under a Run's images directory.
type Resolver struct {
	client    *resty.Client
	maxBytes  int64
	chunkSize int
}

// NewResolver creates a Resolver.
func NewResolver(opts Options) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("Accept", imageAccept)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Resolver{
		client:    client,
		maxBytes:  opts.MaxBytes,
		chunkSize: opts.ChunkSize,
	}
}

// Resolve writes the image behind ref into run's images directory and
// returns its filename. A source already resolved in this run returns the
// recorded filename without another write. On failure nothing is recorded
// and the counter is unchanged.
func (r *Resolver) Resolve(ctx context.Context, run *Run, ref Reference, baseURL string) (string, error) {
	src := strings.TrimSpace(ref.Src)
	if src == "" {
		return "", core.Errorf(core.KindUnsupportedInput, "empty image reference")
	}
	if name, ok := run.Lookup(src); ok {
		return name, nil
	}

	if err := os.MkdirAll(run.ImagesDir, 0755); err != nil {
		return "", core.E(core.KindWriteFailure, "creating images directory", err)
	}

	if strings.HasPrefix(strings.ToLower(src), "data:") {
		return r.resolveDataURI(run, src, ref.Companion)
	}

	abs, err := absoluteURL(src, baseURL)
	if err != nil {
		return "", err
	}
	return r.download(ctx, run, src, abs, baseURL)
}

func (r *Resolver) resolveDataURI(run *Run, src, companion string) (string, error) {
	uri, err := ParseDataURI(src)
	if err != nil {
		return "", err
	}
	name, counted := run.Name(DerivedName(companion), uri.Ext())
	if err := os.WriteFile(run.Path(name), uri.Data, 0644); err != nil {
		os.Remove(run.Path(name))
		return "", core.E(core.KindWriteFailure, "writing "+name, err)
	}
	run.Record(core.OriginDataURI, src, name, counted)
	return name, nil
}

func (r *Resolver) download(ctx context.Context, run *Run, src, abs, baseURL string) (string, error) {
	log := logger.FromContext(ctx)

	req := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if baseURL != "" {
		req.SetHeader("Referer", baseURL)
	}
	resp, err := req.Get(abs)
	if err != nil {
		return "", core.E(core.KindNetworkFailure, "downloading "+abs, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", core.Errorf(core.KindNetworkFailure, "unexpected status %d for %s", resp.StatusCode(), abs)
	}

	ext := extFromContentType(resp.Header().Get("Content-Type"))
	if ext == "" {
		ext = extFromURL(abs)
	}
	if ext == "" {
		ext = defaultExt
	}
	name, counted := run.Name(DerivedName(abs), ext)

	n, err := r.save(run.Path(name), body)
	if err != nil {
		return "", err
	}
	log.Debug("Image downloaded", "url", abs, "file", name, "bytes", n)

	run.Record(core.OriginRemoteURL, src, name, counted)
	return name, nil
}

// save streams body into path in fixed-size chunks, removing the partial
// file on any failure.
func (r *Resolver) save(path string, body io.Reader) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, core.E(core.KindWriteFailure, "creating "+path, err)
	}

	limited := &io.LimitedReader{R: body, N: r.maxBytes + 1}
	n, err := io.CopyBuffer(out, limited, make([]byte, r.chunkSize))
	if err == nil && n > r.maxBytes {
		err = core.Errorf(core.KindNetworkFailure, "image exceeds %d bytes", r.maxBytes)
	} else if err != nil {
		err = core.E(core.KindNetworkFailure, "reading image body", err)
	}
	if cerr := out.Close(); err == nil && cerr != nil {
		err = core.E(core.KindWriteFailure, "closing "+path, cerr)
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}

// absoluteURL resolves src against baseURL. Only http(s) results are accepted.
func absoluteURL(src, baseURL string) (string, error) {
	ref, err := url.Parse(src)
	if err != nil {
		return "", core.E(core.KindUnsupportedInput, "parsing image URL", err)
	}
	if !ref.IsAbs() {
		if baseURL == "" {
			return "", core.Errorf(core.KindUnsupportedInput, "relative image URL %q without a base URL", src)
		}
		base, err := url.Parse(baseURL)
		if err != nil || !base.IsAbs() {
			return "", core.Errorf(core.KindUnsupportedInput, "cannot resolve %q against base %q", src, baseURL)
		}
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", core.Errorf(core.KindUnsupportedInput, "unsupported image URL scheme %q", ref.Scheme)
	}
	return ref.String(), nil
}
