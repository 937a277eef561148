// Package pipeline turns server-rendered markup into a hydrated document
// and renders it: markup is streamed into a fresh document while a watcher
// promotes declarative shadow roots, then the tree is serialized as
// declarative HTML, flattened HTML or Markdown.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/shadowroot/capability"
	"github.com/hazyhaar/shadowroot/dom"
	"github.com/hazyhaar/shadowroot/hydrate"
	"github.com/hazyhaar/shadowroot/internal/config"
	"github.com/hazyhaar/shadowroot/stream"
)

// Format selects the rendering of a result.
type Format string

const (
	FormatHTML     Format = "html"     // shadow roots as declarative templates
	FormatFlat     Format = "flat"     // shadow content inlined into hosts
	FormatMarkdown Format = "markdown" // flat form converted to Markdown
)

// ParseFormat validates a format name. Empty means def.
func ParseFormat(s string, def Format) (Format, error) {
	switch Format(s) {
	case "":
		return def, nil
	case FormatHTML, FormatFlat, FormatMarkdown:
		return Format(s), nil
	}
	return "", fmt.Errorf("pipeline: unknown format %q", s)
}

// Formats lists the supported formats.
func Formats() []Format { return []Format{FormatHTML, FormatFlat, FormatMarkdown} }

// Result is the outcome of one run.
type Result struct {
	Format      Format        `json:"format"`
	Output      string        `json:"output"`
	Native      bool          `json:"native"`
	ShadowRoots int           `json:"shadow_roots"`
	ClosedRoots int           `json:"closed_roots"`
	Templates   int           `json:"templates"` // declarative templates left in the tree
	Tokens      int           `json:"tokens"`
	Checkpoints int           `json:"checkpoints"`
	Duration    time.Duration `json:"duration_ns"`
}

// Pipeline holds the configuration shared by every run.
type Pipeline struct {
	cfg       config.Config
	logger    *slog.Logger
	client    *http.Client
	detector  *capability.Detector
	parseOpts dom.ParseOptions
	policy    *bluemonday.Policy
	md        *converter.Converter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithHTTPClient sets the client used by ProcessURL.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.client = c }
}

// WithDetector replaces the capability detector. The default probes the
// parser the pipeline is configured with.
func WithDetector(d *capability.Detector) Option {
	return func(p *Pipeline) { p.detector = d }
}

// New creates a Pipeline. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	c := *cfg
	c.ApplyDefaults()

	p := &Pipeline{
		cfg:    c,
		logger: slog.Default(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		policy: newPolicy(c.Hydrate),
	}
	for _, o := range opts {
		o(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: c.Fetch.Timeout}
	}
	p.parseOpts = dom.ParseOptions{
		NativeShadowRoots: c.Hydrate.Native,
		ModeAttribute:     c.Hydrate.ModeAttributes[0],
	}
	if p.detector == nil {
		p.detector = capability.NewDetector(capability.ParserProbe(p.parseOpts), p.logger)
	}
	return p
}

// NativeSupport reports whether the configured parser attaches declarative
// shadow roots itself.
func (p *Pipeline) NativeSupport() bool { return p.detector.NativeSupport() }

var customElement = regexp.MustCompile(`^[a-z][a-z0-9._]*-[a-z0-9._-]*$`)

// newPolicy is the user-generated-content policy plus templates, their
// shadow root attributes and custom elements.
func newPolicy(hc config.HydrateConfig) *bluemonday.Policy {
	pol := bluemonday.UGCPolicy()
	pol.AllowElements("template", "section", "article", "header", "footer", "main", "nav", "aside")
	attrs := append([]string{hc.DelegatesFocusAttribute}, hc.ModeAttributes...)
	pol.AllowAttrs(attrs...).OnElements("template")
	pol.AllowElementsMatching(customElement)
	return pol
}

// Process streams markup from r into a new document, hydrates it and
// renders it in format.
func (p *Pipeline) Process(ctx context.Context, r io.Reader, format Format) (*Result, error) {
	return p.process(ctx, r, format, "")
}

func (p *Pipeline) process(ctx context.Context, r io.Reader, format Format, sourceURL string) (*Result, error) {
	start := time.Now()
	format, err := ParseFormat(string(format), Format(p.cfg.Output.Format))
	if err != nil {
		return nil, err
	}

	doc := dom.NewDocument()
	h := hydrate.New(hydrate.Options{
		ModeAttributes:          p.cfg.Hydrate.ModeAttributes,
		DelegatesFocusAttribute: p.cfg.Hydrate.DelegatesFocusAttribute,
		Detector:                p.detector,
		Logger:                  p.logger,
	})
	res := &Result{Format: format, Native: h.NativeSupport()}

	if p.cfg.Hydrate.Native {
		if err := dom.ParseHTML(doc, r, p.parseOpts); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	} else {
		w := h.Watch(doc.Root())
		f := stream.New(doc, doc.Root(), stream.Config{
			Window:    p.cfg.Stream.Window,
			MaxBuffer: p.cfg.Stream.MaxBuffer,
			Logger:    p.logger,
		})
		err := f.Feed(ctx, r)
		w.Stop()
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		st := f.Stats()
		res.Tokens, res.Checkpoints = st.Tokens, st.Checkpoints
	}
	// templates nested under hosts the watcher never saw as targets
	h.Hydrate(doc.Root())

	s := summarize(doc.Root(), p.isDeclarative)
	res.ShadowRoots, res.ClosedRoots, res.Templates = s.roots, s.closed, s.templates

	out, err := p.render(doc, format, sourceURL)
	if err != nil {
		return nil, err
	}
	res.Output = out
	res.Duration = time.Since(start)

	p.logger.Info("pipeline: processed",
		"format", format, "native", res.Native, "shadow_roots", res.ShadowRoots,
		"closed_roots", res.ClosedRoots, "templates", res.Templates, "duration", res.Duration)
	return res, nil
}

func (p *Pipeline) isDeclarative(tmpl *dom.Node) bool {
	_, ok := dom.DeclaredShadowMode(tmpl, p.cfg.Hydrate.ModeAttributes)
	return ok
}

func (p *Pipeline) render(doc *dom.Document, format Format, sourceURL string) (string, error) {
	opts := dom.RenderOptions{
		IncludeShadowRoots: true,
		ModeAttribute:      p.cfg.Hydrate.ModeAttributes[0],
		Flatten:            format != FormatHTML,
	}
	var buf bytes.Buffer
	if err := dom.Render(&buf, doc.Root(), opts); err != nil {
		return "", fmt.Errorf("pipeline: render: %w", err)
	}
	out := buf.String()
	if p.cfg.Output.Sanitize {
		out = p.policy.Sanitize(out)
	}
	if format != FormatMarkdown {
		return out, nil
	}

	var convOpts []converter.ConvertOptionFunc
	if sourceURL != "" {
		convOpts = append(convOpts, converter.WithDomain(sourceURL))
	}
	md, err := p.md.ConvertString(out, convOpts...)
	if err != nil {
		return "", fmt.Errorf("pipeline: markdown: %w", err)
	}
	return md, nil
}
