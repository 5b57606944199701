// Package pipeline wires the stages into the two processing paths: archive
// bundles and web pages. Each call is one run with its own run ID, naming
// state and output layout, and always returns a core.Result.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gaurav-prasanna/docmark/config"
	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/core/archive"
	"github.com/gaurav-prasanna/docmark/core/assemble"
	"github.com/gaurav-prasanna/docmark/core/asset"
	"github.com/gaurav-prasanna/docmark/core/extract"
	"github.com/gaurav-prasanna/docmark/core/fetch"
	"github.com/gaurav-prasanna/docmark/core/normalize"
	"github.com/gaurav-prasanna/docmark/core/output"
	"github.com/gaurav-prasanna/docmark/core/render"
	"github.com/gaurav-prasanna/docmark/crawl"
	"github.com/gaurav-prasanna/docmark/logger"
)

// Export formats accepted by Options.Exports.
const (
	ExportJSON = "json"
	ExportPDF  = "pdf"
)

// Options tune a single run. Zero values fall back to the configuration.
type Options struct {
	OutputDir     string
	Exports       []string
	KeepArchive   bool
	BaseURL       string
	MainOnly      bool
	AbsoluteLinks bool
}

// Pipeline holds the stages shared across runs. Stages carry no per-run
// state, so one Pipeline serves sequential runs.
type Pipeline struct {
	cfg config.Config

	ingestor    *archive.Ingestor
	assembler   *assemble.Assembler
	localizer   *asset.Localizer
	rewriter    *asset.Rewriter
	httpFetcher core.Fetcher
	fileFetcher core.Fetcher
	extractor   core.Extractor
	normalizer  core.Normalizer
}

// New creates a Pipeline from cfg.
func New(cfg config.Config) *Pipeline {
	resolver := asset.NewResolver(asset.Options{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.AssetTimeout,
		MaxBytes:  cfg.Fetch.MaxAssetBytes,
		ChunkSize: cfg.Fetch.ChunkSize,
	})
	return &Pipeline{
		cfg:         cfg,
		ingestor:    archive.New(),
		assembler:   assemble.New(),
		localizer:   asset.NewLocalizer(resolver),
		rewriter:    asset.NewRewriter(),
		httpFetcher: fetch.New(cfg.Fetch.UserAgent, cfg.Fetch.Timeout),
		fileFetcher: fetch.NewFileFetcher(),
		extractor:   extract.New(),
		normalizer:  normalize.New(),
	}
}

// ValidateExports rejects unknown export formats.
func ValidateExports(exports []string) error {
	for _, e := range exports {
		switch e {
		case ExportJSON, ExportPDF:
		default:
			return core.Errorf(core.KindUnsupportedInput, "unknown export format %q (want json or pdf)", e)
		}
	}
	return nil
}

// Archive turns an extraction bundle into markdown/content.md. The
// workspace is removed on every exit path; the archive itself is deleted
// only after a successful run unless KeepArchive is set.
func (p *Pipeline) Archive(ctx context.Context, archivePath string, opts Options) core.Result {
	ctx, runID := p.startRun(ctx, "archive", archivePath)
	log := logger.FromContext(ctx)
	start := time.Now()

	if err := ValidateExports(opts.Exports); err != nil {
		return failure(runID, err)
	}

	layout, err := output.New(p.outputDir(opts))
	if err != nil {
		return failure(runID, err)
	}

	bundle, err := p.ingestor.Ingest(ctx, archivePath, layout)
	if err != nil {
		log.Error("Archive ingestion failed", "error", err)
		return failure(runID, err)
	}
	defer func() {
		if err := bundle.Cleanup(); err != nil {
			log.Error("Workspace cleanup failed", "error", err)
		}
	}()

	run := asset.NewRun(layout.ImagesDir())
	doc, rep := p.assembler.Archive(ctx, bundle, run)

	meta := p.metadata(archivePath, core.SourceArchive, strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath)), runID)
	mdPath := layout.ArchiveMarkdownPath()
	markdown, err := p.assembler.Write(layout, mdPath, assemble.Serialize(doc), meta)
	if err != nil {
		log.Error("Writing markdown failed", "error", err)
		return failure(runID, err)
	}

	exports, err := p.export(layout, mdPath, markdown, meta, opts.Exports)
	if err != nil {
		log.Error("Export failed", "error", err)
		return failure(runID, err)
	}

	keep := opts.KeepArchive || p.cfg.Archive.KeepArchive
	if !keep {
		if err := os.Remove(archivePath); err != nil {
			log.Warn("Could not delete processed archive", "archive", archivePath, "error", err)
		}
	}

	log.Info("Archive processed",
		"blocks", rep.Blocks,
		"figures", rep.Figures,
		"tables", rep.Tables,
		"skipped", rep.Skipped,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	res := core.Result{
		Status:       core.StatusSuccess,
		Message:      "Archive processed successfully",
		RunID:        runID,
		OutputDir:    layout.Root,
		MarkdownPath: mdPath,
		ImagesDir:    layout.ImagesDir(),
		Exports:      exports,
		Assets:       run.Assets(),
		Skipped:      rep.Skipped,
	}
	res.MarkPartial()
	return res
}

// Web turns a page (URL or local HTML file) into website_content.md with
// its images localized.
func (p *Pipeline) Web(ctx context.Context, source string, opts Options) core.Result {
	ctx, runID := p.startRun(ctx, "web", source)
	log := logger.FromContext(ctx)
	start := time.Now()

	if err := ValidateExports(opts.Exports); err != nil {
		return failure(runID, err)
	}

	layout, err := output.New(p.outputDir(opts))
	if err != nil {
		return failure(runID, err)
	}

	res, err := p.webOne(ctx, runID, source, layout, opts)
	if err != nil {
		log.Error("Web processing failed", "error", err)
		return failure(runID, err)
	}

	log.Info("Page processed",
		"images", len(res.Assets),
		"skipped", res.Skipped,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res
}

// WebAll discovers the same-domain pages reachable from startURL and
// processes each into its own directory under the output root. Pages that
// fail are logged and counted; the run fails only when every page failed.
func (p *Pipeline) WebAll(ctx context.Context, startURL string, opts Options) core.Result {
	ctx, runID := p.startRun(ctx, "web-all", startURL)
	log := logger.FromContext(ctx)

	if err := ValidateExports(opts.Exports); err != nil {
		return failure(runID, err)
	}
	if !isRemote(startURL) {
		return failure(runID, core.Errorf(core.KindUnsupportedInput, "--all needs an http(s) URL, got %q", startURL))
	}

	root, err := output.New(p.outputDir(opts))
	if err != nil {
		return failure(runID, err)
	}

	urls, err := crawl.DiscoverAll(ctx, startURL, p.httpFetcher, p.cfg.Web.MaxPages)
	if err != nil {
		return failure(runID, err)
	}

	total := core.Result{
		Status:    core.StatusSuccess,
		RunID:     runID,
		OutputDir: root.Root,
	}
	var failed int
	for i, pageURL := range urls {
		log.Info("Processing page", "page", i+1, "of", len(urls), "url", pageURL)

		layout, err := root.PageLayout(pageURL)
		if err != nil {
			failed++
			log.Error("Preparing page directory failed", "url", pageURL, "error", err)
			continue
		}
		pageOpts := opts
		pageOpts.BaseURL = ""
		res, err := p.webOne(ctx, runID, pageURL, layout, pageOpts)
		if err != nil {
			failed++
			log.Error("Page failed", "url", pageURL, "kind", core.KindOf(err), "error", err)
			continue
		}
		total.Assets = append(total.Assets, res.Assets...)
		total.Exports = append(total.Exports, res.Exports...)
		total.Skipped += res.Skipped
	}

	if len(urls) > 0 && failed == len(urls) {
		return failure(runID, core.Errorf(core.KindNetworkFailure, "all %d pages failed", failed))
	}
	total.Skipped += failed
	total.MarkPartial()
	total.Message = fmt.Sprintf("Processed %d of %d pages", len(urls)-failed, len(urls))
	return total
}

func (p *Pipeline) webOne(ctx context.Context, runID, source string, layout *output.Layout, opts Options) (core.Result, error) {
	log := logger.FromContext(ctx)

	fetcher := p.fileFetcher
	baseURL := opts.BaseURL
	if isRemote(source) {
		fetcher = p.httpFetcher
	}
	page, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return core.Result{}, err
	}
	if baseURL == "" && isRemote(page.URL) {
		baseURL = page.URL
	}

	if err := layout.EnsureImagesDir(); err != nil {
		return core.Result{}, err
	}
	run := asset.NewRun(layout.ImagesDir())
	run.Absolute = opts.AbsoluteLinks || p.cfg.Web.AbsoluteLinks

	htmlPath := layout.WebHTMLPath()
	html, stats, err := p.localizer.Localize(ctx, run, page.HTML, baseURL, htmlPath)
	if err != nil {
		return core.Result{}, err
	}
	if rewritten, n := p.rewriter.Rewrite(html, run); n > 0 {
		html = rewritten
		if err := layout.Write(htmlPath, []byte(html)); err != nil {
			return core.Result{}, err
		}
		log.Debug("Remote image links rewritten in HTML", "count", n)
	}

	content := html
	if opts.MainOnly || p.cfg.Web.MainOnly {
		if content, err = p.extractor.Extract(html); err != nil {
			return core.Result{}, core.E(core.KindDecodeFailure, "extracting main content", err)
		}
	}

	markdown, err := p.normalizer.Normalize(content)
	if err != nil {
		return core.Result{}, core.E(core.KindDecodeFailure, "normalizing HTML", err)
	}
	markdown, _ = p.rewriter.Rewrite(markdown, run)

	meta := p.metadata(source, core.SourceWeb, extract.Title(page.HTML), runID)
	mdPath := layout.WebMarkdownPath()
	markdown, err = p.assembler.Write(layout, mdPath, markdown, meta)
	if err != nil {
		return core.Result{}, err
	}

	exports, err := p.export(layout, mdPath, markdown, meta, opts.Exports)
	if err != nil {
		return core.Result{}, err
	}

	res := core.Result{
		Status:       core.StatusSuccess,
		Message:      "Page processed successfully",
		RunID:        runID,
		OutputDir:    layout.Root,
		MarkdownPath: mdPath,
		HTMLPath:     htmlPath,
		ImagesDir:    layout.ImagesDir(),
		Exports:      exports,
		Assets:       run.Assets(),
		Skipped:      stats.Failed,
	}
	res.MarkPartial()
	return res, nil
}

// export writes each requested format next to mdPath.
func (p *Pipeline) export(layout *output.Layout, mdPath, markdown string, meta core.Metadata, formats []string) ([]string, error) {
	var written []string
	for _, f := range formats {
		var r core.Renderer
		switch f {
		case ExportJSON:
			r = render.NewJSONRenderer()
		case ExportPDF:
			r = render.NewPDFRenderer(filepath.Dir(mdPath))
		}
		data, err := r.Render(markdown, meta)
		if err != nil {
			return written, core.E(core.KindInternal, "rendering "+f, err)
		}
		path := strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + r.Extension()
		if err := layout.Write(path, data); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (p *Pipeline) startRun(ctx context.Context, mode, source string) (context.Context, string) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With("run_id", runID, "mode", mode)
	log.Info("Run started", "source", source)
	return logger.ContextWithLogger(ctx, log), runID
}

func (p *Pipeline) outputDir(opts Options) string {
	if opts.OutputDir != "" {
		return opts.OutputDir
	}
	return p.cfg.OutputDir
}

func (p *Pipeline) metadata(source string, kind core.SourceKind, title, runID string) core.Metadata {
	return core.Metadata{
		Source:      source,
		Kind:        kind,
		Title:       title,
		RunID:       runID,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func failure(runID string, err error) core.Result {
	return core.Result{
		Status:  core.StatusError,
		Kind:    core.KindOf(err),
		Message: err.Error(),
		RunID:   runID,
	}
}

func isRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
