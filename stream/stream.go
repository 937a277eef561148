// Package stream feeds markup into a live document a chunk at a time.
//
// Nodes are appended as tokens arrive, and mutation delivery checkpoints
// (Document.DeliverMutations) are batched by a debounce window. A checkpoint
// is never taken while a streamed <template> is still open, so a watcher
// only ever sees complete templates.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/net/html"

	"github.com/hazyhaar/shadowroot/dom"
)

// Config controls batching of delivery checkpoints.
type Config struct {
	// Window is the quiet time after the last appended node before a
	// checkpoint. Default: 250ms.
	Window time.Duration
	// MaxBuffer takes a checkpoint immediately when this many nodes were
	// appended since the last one. Default: 1000.
	MaxBuffer int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Window <= 0 {
		c.Window = 250 * time.Millisecond
	}
	if c.MaxBuffer <= 0 {
		c.MaxBuffer = 1000
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Stats counts what a Feed call did.
type Stats struct {
	Tokens      int
	Nodes       int
	Checkpoints int
}

// Feeder appends streamed markup under one parent node.
type Feeder struct {
	doc    *dom.Document
	b      *builder
	d      *debouncer
	logger *slog.Logger
	stats  Stats
}

// New creates a Feeder that appends under parent, which must belong to doc.
func New(doc *dom.Document, parent *dom.Node, cfg Config) *Feeder {
	cfg.defaults()
	f := &Feeder{doc: doc, b: newBuilder(doc, parent), logger: cfg.Logger}
	f.d = newDebouncer(cfg, func() bool { return !f.b.inTemplate() }, f.checkpoint)
	return f
}

// Stats returns the counters so far.
func (f *Feeder) Stats() Stats { return f.stats }

type tokenOrErr struct {
	tok html.Token
	err error
}

// Feed reads r to the end. Tree mutations and checkpoints happen on the
// calling goroutine; only tokenizing runs in the background. At EOF every
// open element is closed and a final checkpoint is taken.
func (f *Feeder) Feed(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan tokenOrErr, 64)
	go tokenize(ctx, r, ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case item := <-ch:
			if item.err != nil {
				if !errors.Is(item.err, io.EOF) {
					return fmt.Errorf("stream: read: %w", item.err)
				}
				f.finish()
				return nil
			}
			f.stats.Tokens++
			n, err := f.b.apply(item.tok)
			if err != nil {
				return fmt.Errorf("stream: append %s: %w", item.tok.Data, err)
			}
			f.stats.Nodes += n
			if !f.d.add(n) {
				f.d.retry()
			}

		case <-f.d.timerC():
			f.d.flush()
		}
	}
}

func (f *Feeder) finish() {
	f.b.closeAll()
	f.d.flush()
	// records can be queued without new nodes, e.g. by a move
	if f.doc.HasPendingMutations() {
		f.checkpoint(0)
	}
	f.logger.Debug("stream: feed complete",
		"tokens", f.stats.Tokens, "nodes", f.stats.Nodes, "checkpoints", f.stats.Checkpoints)
}

func (f *Feeder) checkpoint(nodes int) {
	f.stats.Checkpoints++
	f.doc.DeliverMutations()
	f.logger.Debug("stream: checkpoint", "nodes", nodes, "seq", f.stats.Checkpoints)
}

// tokenize sends tokens until the reader ends or ctx is cancelled. The last
// item carries the reader error, io.EOF on a clean end.
func tokenize(ctx context.Context, r io.Reader, ch chan<- tokenOrErr) {
	z := html.NewTokenizer(r)
	for {
		var item tokenOrErr
		if z.Next() == html.ErrorToken {
			item.err = z.Err()
		} else {
			item.tok = z.Token()
		}
		select {
		case ch <- item:
		case <-ctx.Done():
			return
		}
		if item.err != nil {
			return
		}
	}
}
