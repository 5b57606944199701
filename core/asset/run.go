// Package asset localizes image references: it downloads or decodes each
// referenced image into a run's images directory and rewrites references
// to point at the local copy.
package asset

import (
	"fmt"
	"path/filepath"

	"github.com/gaurav-prasanna/docmark/core"
)

// Run holds the naming state of one processing run. Filenames are unique
// within a Run; separate runs must use separate images directories.
// A Run is not safe for concurrent use.
type Run struct {
	ImagesDir string
	// Absolute makes Link return the path under ImagesDir instead of a
	// document-relative images/<name> path.
	Absolute bool

	counter int
	claimed map[string]bool
	sources map[string]string
	assets  []core.Asset
}

// NewRun creates a Run writing into imagesDir.
func NewRun(imagesDir string) *Run {
	return &Run{
		ImagesDir: imagesDir,
		claimed:   make(map[string]bool),
		sources:   make(map[string]string),
	}
}

// Counter returns how many assets were named by the counter strategy.
func (r *Run) Counter() int { return r.counter }

// Assets returns the assets written so far, in write order.
func (r *Run) Assets() []core.Asset { return r.assets }

// Lookup returns the filename recorded for src.
func (r *Run) Lookup(src string) (string, bool) {
	name, ok := r.sources[src]
	return name, ok
}

// Claimed reports whether name is taken in this run.
func (r *Run) Claimed(name string) bool { return r.claimed[name] }

// Path returns the on-disk path of name.
func (r *Run) Path(name string) string { return filepath.Join(r.ImagesDir, name) }

// Link returns the reference written into documents for name.
func (r *Run) Link(name string) string {
	if r.Absolute {
		return filepath.ToSlash(r.Path(name))
	}
	return "images/" + name
}

// Name picks a filename without recording it: derived when it is set and
// not yet claimed, otherwise the next free counter name image_<n>.<ext>.
// counted reports which strategy was used.
func (r *Run) Name(derived, ext string) (name string, counted bool) {
	if derived != "" && !r.claimed[derived] {
		return derived, false
	}
	for n := r.counter + 1; ; n++ {
		name = fmt.Sprintf("image_%d.%s", n, ext)
		if !r.claimed[name] {
			return name, true
		}
	}
}

// Record registers a written asset. Call it only after the write succeeded
// so failed assets leave the counter untouched.
func (r *Run) Record(origin core.Origin, src, name string, counted bool) core.Asset {
	if counted {
		var n int
		if _, err := fmt.Sscanf(name, "image_%d.", &n); err == nil && n > r.counter {
			r.counter = n
		}
	}
	r.claimed[name] = true
	if src != "" {
		r.sources[src] = name
	}
	a := core.Asset{Origin: origin, Source: src, Filename: name, Dir: r.ImagesDir}
	r.assets = append(r.assets, a)
	return a
}
