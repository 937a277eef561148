// Package hydrate promotes declarative shadow root templates into attached
// shadow roots on hosts that do not do it natively.
//
// A template such as
//
//	<my-card><template shadowrootmode="open">...</template></my-card>
//
// is replaced by an open shadow root on my-card holding the template
// content. Nested templates are promoted before the templates that contain
// them, so a host's shadow tree is complete when it is attached.
//
// All functions must run on the goroutine that owns the document.
package hydrate

import (
	"log/slog"

	"github.com/hazyhaar/shadowroot/dom"
)

// Hydrator runs the traversal with one configuration.
type Hydrator struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Hydrator.
func New(opts Options) *Hydrator {
	opts.defaults()
	return &Hydrator{opts: opts, logger: opts.Logger}
}

// Default is the Hydrator behind the package-level functions.
var Default = New(Options{})

// NativeSupport reports whether the host already attaches declarative
// shadow roots, in which case Hydrate and Watch do nothing.
func NativeSupport() bool { return Default.NativeSupport() }

// Hydrate promotes every qualifying template under root using Default.
func Hydrate(root *dom.Node) { Default.Hydrate(root) }

// Watch keeps scope hydrated using Default.
func Watch(scope *dom.Node) *Handle { return Default.Watch(scope) }

// NativeSupport reports the detector's cached answer.
func (h *Hydrator) NativeSupport() bool {
	return h.opts.Detector.NativeSupport()
}

// frame is one level of the traversal: the template whose content is being
// processed (nil at the root) and the templates still to visit at that
// level, last element first.
type frame struct {
	template *dom.Node
	pending  []*dom.Node
}

// passStats counts what one traversal did.
type passStats struct {
	visited   int
	promoted  int
	discarded int
}

// Hydrate promotes every qualifying template under root, innermost first.
// Calling it again on the same or an overlapping scope is harmless: promoted
// templates are gone and the rest are left as they were.
func (h *Hydrator) Hydrate(root *dom.Node) {
	if root == nil || h.NativeSupport() {
		return
	}
	var st passStats
	stack := []frame{{pending: collectTemplates(root)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if n := len(top.pending); n > 0 {
			tmpl := top.pending[n-1]
			top.pending = top.pending[:n-1]
			st.visited++
			stack = append(stack, frame{template: tmpl, pending: collectTemplates(tmpl.Content())})
			continue
		}
		if top.template != nil {
			h.promote(top.template, &st)
		}
		stack = stack[:len(stack)-1]
	}
	if st.visited > 0 {
		h.logger.Debug("hydrate: pass complete",
			"root", root.Tag(), "templates", st.visited,
			"promoted", st.promoted, "discarded", st.discarded)
	}
}
