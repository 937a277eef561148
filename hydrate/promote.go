package hydrate

import (
	"errors"

	"github.com/hazyhaar/shadowroot/dom"
)

// promote turns one template into a shadow root on its parent. Templates
// without a valid mode, or whose parent is not an element, are left alone.
// When the parent already has a shadow root the first template wins: this
// one is removed and its content dropped.
func (h *Hydrator) promote(tmpl *dom.Node, st *passStats) {
	mode, ok := h.shadowMode(tmpl)
	if !ok {
		return
	}
	host := tmpl.Parent()
	if host == nil {
		panic("hydrate: pending template has no parent")
	}
	if host.Kind() != dom.KindElement {
		return
	}

	root, err := host.AttachShadow(dom.ShadowRootInit{
		Mode:           mode,
		DelegatesFocus: tmpl.HasAttribute(h.opts.DelegatesFocusAttribute),
	})
	if err != nil {
		if !errors.Is(err, dom.ErrShadowRootExists) {
			h.logger.Debug("hydrate: host rejected shadow root",
				"host", host.Tag(), "error", err)
		}
		mustRemove(host, tmpl)
		st.discarded++
		return
	}

	if err := root.AppendChild(tmpl.Content()); err != nil {
		panic("hydrate: move template content: " + err.Error())
	}
	mustRemove(host, tmpl)
	st.promoted++
}

func mustRemove(host, tmpl *dom.Node) {
	if err := host.RemoveChild(tmpl); err != nil {
		panic("hydrate: remove template: " + err.Error())
	}
}
