package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/hazyhaar/shadowroot/kit"
)

// Request is the transport-neutral input of the hydrate operation. Exactly
// one of HTML and URL must be set.
type Request struct {
	HTML   string `json:"html,omitempty"`
	URL    string `json:"url,omitempty"`
	Format string `json:"format,omitempty"`
}

// ErrBadRequest wraps input validation failures.
var ErrBadRequest = errors.New("pipeline: bad request")

// Endpoint exposes Process and ProcessURL as a kit.Endpoint taking a
// *Request, with request IDs and call logging.
func (p *Pipeline) Endpoint() kit.Endpoint {
	return kit.Chain(
		kit.WithRequestIDs(),
		kit.WithLogging(p.logger, "hydrate"),
	)(p.serve)
}

func (p *Pipeline) serve(ctx context.Context, req any) (any, error) {
	r, ok := req.(*Request)
	if !ok || r == nil {
		return nil, ErrBadRequest
	}
	format, err := ParseFormat(r.Format, Format(p.cfg.Output.Format))
	if err != nil {
		return nil, errors.Join(ErrBadRequest, err)
	}
	switch {
	case r.HTML != "" && r.URL != "":
		return nil, errors.Join(ErrBadRequest, errors.New("html and url are exclusive"))
	case r.URL != "":
		return p.ProcessURL(ctx, r.URL, format)
	case r.HTML != "":
		return p.Process(ctx, strings.NewReader(r.HTML), format)
	}
	return nil, errors.Join(ErrBadRequest, errors.New("html or url is required"))
}
