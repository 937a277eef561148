package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrPageTooLarge is returned when a fetched page exceeds fetch.max_bytes.
var ErrPageTooLarge = errors.New("pipeline: page exceeds fetch limit")

// ProcessURL fetches pageURL and streams the response body through Process.
// A body larger than the configured fetch limit fails with ErrPageTooLarge
// instead of being hydrated truncated.
func (p *Pipeline) ProcessURL(ctx context.Context, pageURL string, format Format) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline: new request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.Fetch.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pipeline: fetch %s: status %d", pageURL, resp.StatusCode)
	}
	p.logger.Debug("pipeline: fetched",
		"url", pageURL, "status", resp.StatusCode, "content_type", resp.Header.Get("Content-Type"))

	return p.process(ctx, &cappedReader{r: resp.Body, left: p.cfg.Fetch.MaxBytes}, format, pageURL)
}

// cappedReader passes through at most left bytes and fails if the
// underlying reader has more.
type cappedReader struct {
	r    io.Reader
	left int64
}

func (c *cappedReader) Read(b []byte) (int, error) {
	if c.left <= 0 {
		var one [1]byte
		n, err := c.r.Read(one[:])
		if n > 0 {
			return 0, ErrPageTooLarge
		}
		if err == nil {
			return 0, nil
		}
		return 0, err
	}
	if int64(len(b)) > c.left {
		b = b[:c.left]
	}
	n, err := c.r.Read(b)
	c.left -= int64(n)
	return n, err
}
