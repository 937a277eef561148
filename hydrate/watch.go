package hydrate

import (
	"log/slog"

	"github.com/hazyhaar/shadowroot/dom"
	"github.com/hazyhaar/shadowroot/idgen"
)

var newHandleID = idgen.Prefixed("watch_", idgen.Default)

// Handle is a live subscription created by Watch. Call Stop to release it.
type Handle struct {
	id       string
	observer *dom.MutationObserver
	logger   *slog.Logger
}

// ID identifies the subscription in logs.
func (w *Handle) ID() string { return w.id }

// Observer returns the underlying mutation observer, nil for the inert
// handle returned under native support.
func (w *Handle) Observer() *dom.MutationObserver { return w.observer }

// Stop ends automatic hydration for the scope. Work already done stays.
// It is safe to call more than once.
func (w *Handle) Stop() {
	if w == nil || w.observer == nil {
		return
	}
	w.observer.Disconnect()
	w.observer = nil
	w.logger.Debug("hydrate: watch stopped", "id", w.id)
}

// Watch hydrates subtrees added under scope whenever the owning document
// delivers mutations. Under native support, or for a nil scope, it returns
// an inert handle.
func (h *Hydrator) Watch(scope *dom.Node) *Handle {
	if scope == nil || h.NativeSupport() {
		return &Handle{}
	}
	w := &Handle{id: newHandleID(), logger: h.logger}
	w.observer = dom.NewMutationObserver(func(b dom.MutationBatch) {
		h.hydrateBatch(w, b)
	})
	w.observer.Observe(scope, dom.ObserveOptions{ChildList: true, Subtree: true})
	h.logger.Debug("hydrate: watching", "id", w.id, "scope", scope.Tag())
	return w
}

// hydrateBatch runs the traversal once per distinct target that gained
// children, in the order the targets first appear in the batch.
func (h *Hydrator) hydrateBatch(w *Handle, b dom.MutationBatch) {
	targets := addedTargets(b.Records)
	for _, t := range targets {
		h.Hydrate(t)
	}
	if len(targets) > 0 {
		h.logger.Debug("hydrate: batch handled",
			"id", w.id, "seq", b.Seq, "records", len(b.Records), "targets", len(targets))
	}
}

func addedTargets(records []dom.MutationRecord) []*dom.Node {
	seen := make(map[*dom.Node]bool, len(records))
	var out []*dom.Node
	for _, r := range records {
		if len(r.AddedNodes) == 0 || seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
	}
	return out
}
