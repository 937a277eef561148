package pipeline

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/shadowroot/kit"
)

// Routes returns the HTTP surface:
//
//	GET  /health             liveness and native support
//	POST /hydrate?format=    body is HTML (streamed) or a JSON Request
//	GET  /hydrate?url=&format=
//
// With raw=1 the rendered output is returned as the body instead of the
// JSON Result.
func (p *Pipeline) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := kit.WithTransport(req.Context(), "http")
			ctx = kit.WithRequestID(ctx, middleware.GetReqID(ctx))
			ctx = kit.WithRemoteAddr(ctx, req.RemoteAddr)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "native": p.NativeSupport()})
	})

	endpoint := p.Endpoint()

	r.Get("/hydrate", func(w http.ResponseWriter, r *http.Request) {
		in := &Request{URL: r.URL.Query().Get("url"), Format: r.URL.Query().Get("format")}
		if in.URL == "" {
			writeError(w, http.StatusBadRequest, errors.New("url is required"))
			return
		}
		resp, err := endpoint(r.Context(), in)
		p.respond(w, r, resp, err)
	})

	r.Post("/hydrate", func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, p.cfg.Fetch.MaxBytes)
		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mt == "application/json" {
			var in Request
			if err := json.NewDecoder(body).Decode(&in); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			if f := r.URL.Query().Get("format"); f != "" {
				in.Format = f
			}
			resp, err := endpoint(r.Context(), &in)
			p.respond(w, r, resp, err)
			return
		}

		// raw markup is streamed straight into the document
		format, err := ParseFormat(r.URL.Query().Get("format"), Format(p.cfg.Output.Format))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		resp, err := p.Process(r.Context(), body, format)
		p.respond(w, r, resp, err)
	})

	return r
}

func (p *Pipeline) respond(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err != nil {
		code := http.StatusInternalServerError
		if r.Method == http.MethodGet {
			code = http.StatusBadGateway
		}
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, ErrBadRequest):
			code = http.StatusBadRequest
		case errors.As(err, &tooBig):
			code = http.StatusRequestEntityTooLarge
		case errors.Is(err, ErrPageTooLarge):
			code = http.StatusBadGateway
		}
		p.logger.Warn("pipeline: request failed", "path", r.URL.Path, "error", err)
		writeError(w, code, err)
		return
	}
	res, ok := resp.(*Result)
	if ok && r.URL.Query().Get("raw") == "1" {
		ct := "text/html; charset=utf-8"
		if res.Format == FormatMarkdown {
			ct = "text/markdown; charset=utf-8"
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(res.Output))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
