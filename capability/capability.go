// Package capability answers one question, once per process: does the host
// environment already attach declarative shadow roots while parsing?
//
// The answer is memoized and never recomputed. Tests that need both answers
// build their own Detector with NewDetector instead of touching the default.
package capability

import (
	"log/slog"
	"sync"

	"github.com/hazyhaar/shadowroot/dom"
)

// Probe performs the synchronous feature check. A probe that panics is
// treated as reporting no native support.
type Probe func() bool

// Detector memoizes the result of a Probe.
type Detector struct {
	probe  Probe
	once   sync.Once
	native bool
	logger *slog.Logger
}

// NewDetector returns a Detector that runs probe on first use.
func NewDetector(probe Probe, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{probe: probe, logger: logger}
}

// Fixed returns a Detector that always reports native.
func Fixed(native bool) *Detector {
	return NewDetector(func() bool { return native }, nil)
}

// NativeSupport runs the probe on the first call and returns the cached
// answer afterwards.
func (d *Detector) NativeSupport() bool {
	d.once.Do(func() {
		d.native = d.run()
		d.logger.Debug("capability: probed native declarative shadow roots", "native", d.native)
	})
	return d.native
}

func (d *Detector) run() (native bool) {
	if d.probe == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("capability: probe panicked", "panic", r)
			native = false
		}
	}()
	return d.probe()
}

// ProbeMarkup is the minimal document a probe parses: a div whose only
// child is a declarative open shadow root.
const ProbeMarkup = `<div><template shadowrootmode="open"></template></div>`

// ParserProbe checks the dom parser configured with opts.
func ParserProbe(opts dom.ParseOptions) Probe {
	return func() bool {
		doc := dom.NewDocument()
		div := doc.CreateElement("div")
		if err := dom.SetInnerHTML(div, ProbeMarkup, opts); err != nil {
			return false
		}
		first := div.FirstElementChild()
		return first != nil && first.ShadowRoot() != nil
	}
}

var defaultDetector = NewDetector(ParserProbe(dom.ParseOptions{}), nil)

// Default returns the process-wide detector.
func Default() *Detector { return defaultDetector }

// NativeSupport reports the process-wide answer.
func NativeSupport() bool { return defaultDetector.NativeSupport() }
