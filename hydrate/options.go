package hydrate

import (
	"log/slog"

	"github.com/hazyhaar/shadowroot/capability"
	"github.com/hazyhaar/shadowroot/dom"
)

// Options configures a Hydrator.
type Options struct {
	// ModeAttributes are the template attributes read for the shadow root
	// mode, in priority order. The first one present decides.
	// Default: shadowrootmode, then the legacy shadowroot.
	ModeAttributes []string

	// DelegatesFocusAttribute is the boolean attribute that requests focus
	// delegation. Default: shadowrootdelegatesfocus.
	DelegatesFocusAttribute string

	// Detector gates all work. Default: capability.Default().
	Detector *capability.Detector

	Logger *slog.Logger
}

func (o *Options) defaults() {
	if len(o.ModeAttributes) == 0 {
		o.ModeAttributes = []string{dom.AttrShadowRootMode, dom.AttrShadowRootLegacy}
	}
	if o.DelegatesFocusAttribute == "" {
		o.DelegatesFocusAttribute = dom.AttrShadowRootDelegatesFocus
	}
	if o.Detector == nil {
		o.Detector = capability.Default()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}
