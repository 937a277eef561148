package capability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// RodConfig configures a probe run inside a real Chrome.
type RodConfig struct {
	// RemoteURL is the DevTools WebSocket URL of an existing Chrome.
	// Empty = launch a local headless Chrome via launcher.
	RemoteURL string

	// Timeout bounds the whole probe. Default: 30s.
	Timeout time.Duration

	Logger *slog.Logger
}

func (c *RodConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// probeJS mirrors ParserProbe inside the page. innerHTML never attaches
// declarative shadow roots in current Chrome, so the HTML-unsafe parsing
// entry points are tried first.
const probeJS = `() => {
	const markup = '` + ProbeMarkup + `';
	const div = document.createElement('div');
	if (typeof div.setHTMLUnsafe === 'function') {
		div.setHTMLUnsafe(markup);
		return !!div.firstElementChild.shadowRoot;
	}
	if (typeof Document.parseHTMLUnsafe === 'function') {
		const doc = Document.parseHTMLUnsafe(markup);
		return !!doc.body.firstElementChild.shadowRoot;
	}
	div.innerHTML = markup;
	return !!div.firstElementChild.shadowRoot;
}`

// RodProbe returns a Probe that asks a Chrome instance whether its parser
// attaches declarative shadow roots. Browser errors are logged and reported
// as no native support.
func RodProbe(ctx context.Context, cfg RodConfig) Probe {
	cfg.defaults()
	return func() bool {
		native, err := probeBrowser(ctx, cfg)
		if err != nil {
			cfg.Logger.Warn("capability: browser probe failed", "error", err)
			return false
		}
		return native
	}
}

func probeBrowser(ctx context.Context, cfg RodConfig) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	controlURL := cfg.RemoteURL
	if controlURL == "" {
		l := launcher.New().Headless(true).Context(ctx)
		defer l.Cleanup()
		u, err := l.Launch()
		if err != nil {
			return false, fmt.Errorf("capability: launch chrome: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return false, fmt.Errorf("capability: connect chrome: %w", err)
	}
	if cfg.RemoteURL == "" {
		defer b.Close()
	}

	page, err := stealth.Page(b)
	if err != nil {
		return false, fmt.Errorf("capability: create page: %w", err)
	}
	defer page.Close()

	res, err := page.Context(ctx).Eval(probeJS)
	if err != nil {
		return false, fmt.Errorf("capability: eval probe: %w", err)
	}
	return res.Value.Bool(), nil
}
