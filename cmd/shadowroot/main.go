// Command shadowroot attaches declarative shadow roots in server-rendered
// HTML and renders the result.
//
// Usage:
//
//	shadowroot -file page.html               # hydrate a file (or - for stdin)
//	shadowroot -url https://example.com      # fetch and hydrate a page
//	shadowroot -serve :8087                  # HTTP API
//	shadowroot -mcp                          # MCP server on stdio
//	shadowroot -probe                        # ask Chrome about native support
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/shadowroot/capability"
	"github.com/hazyhaar/shadowroot/internal/config"
	"github.com/hazyhaar/shadowroot/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to shadowroot.yaml config file")
	file := flag.String("file", "", "hydrate an HTML file (- for stdin)")
	pageURL := flag.String("url", "", "fetch and hydrate a URL")
	serveAddr := flag.String("serve", "", "serve the HTTP API on this address (\"config\": use server.addr)")
	mcpStdio := flag.Bool("mcp", false, "run an MCP server on stdio")
	probe := flag.Bool("probe", false, "probe Chrome for native declarative shadow roots and exit")
	format := flag.String("format", "", "output format: html, flat, markdown (default from config)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			logger.Error("shadowroot: load config", "error", err)
			os.Exit(1)
		}
	}
	if *serveAddr != "" && *serveAddr != "config" {
		cfg.Server.Addr = *serveAddr
	}

	opts := runOptions{
		file:   *file,
		url:    *pageURL,
		serve:  *serveAddr != "",
		mcp:    *mcpStdio,
		probe:  *probe,
		format: *format,
		out:    os.Stdout,
		in:     os.Stdin,
		logger: logger,
		cfg:    cfg,
	}
	if err := run(ctx, opts); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "usage: shadowroot -file <path|-> | -url <url> | -serve <addr> | -mcp | -probe")
			os.Exit(2)
		}
		logger.Error("shadowroot: fatal", "error", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("no mode selected")

type runOptions struct {
	file   string
	url    string
	serve  bool
	mcp    bool
	probe  bool
	format string
	out    io.Writer
	in     io.Reader
	logger *slog.Logger
	cfg    *config.Config
}

func run(ctx context.Context, o runOptions) error {
	if o.probe {
		return runProbe(ctx, o)
	}

	p := pipeline.New(o.cfg, pipeline.WithLogger(o.logger))

	switch {
	case o.serve:
		return runServe(ctx, o, p)
	case o.mcp:
		return runMCP(ctx, p)
	case o.file != "" || o.url != "":
		return runOnce(ctx, o, p)
	}
	return errUsage
}

func runOnce(ctx context.Context, o runOptions, p *pipeline.Pipeline) error {
	format, err := pipeline.ParseFormat(o.format, pipeline.Format(o.cfg.Output.Format))
	if err != nil {
		return err
	}

	var res *pipeline.Result
	switch {
	case o.url != "":
		res, err = p.ProcessURL(ctx, o.url, format)
	case o.file == "-":
		res, err = p.Process(ctx, o.in, format)
	default:
		f, ferr := os.Open(o.file)
		if ferr != nil {
			return fmt.Errorf("open input: %w", ferr)
		}
		defer f.Close()
		res, err = p.Process(ctx, f, format)
	}
	if err != nil {
		return err
	}

	if _, err := io.WriteString(o.out, res.Output); err != nil {
		return err
	}
	_, err = io.WriteString(o.out, "\n")
	return err
}

func runServe(ctx context.Context, o runOptions, p *pipeline.Pipeline) error {
	srv := &http.Server{
		Addr:              o.cfg.Server.Addr,
		Handler:           p.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		o.logger.Info("shadowroot: server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	o.logger.Info("shadowroot: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	o.logger.Info("shadowroot: server stopped")
	return nil
}

func runMCP(ctx context.Context, p *pipeline.Pipeline) error {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "shadowroot",
		Version: "1.0.0",
	}, nil)
	p.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func runProbe(ctx context.Context, o runOptions) error {
	d := capability.NewDetector(capability.RodProbe(ctx, capability.RodConfig{
		RemoteURL: o.cfg.Browser.Remote,
		Timeout:   o.cfg.Browser.Timeout,
		Logger:    o.logger,
	}), o.logger)

	enc := json.NewEncoder(o.out)
	return enc.Encode(map[string]bool{"native": d.NativeSupport()})
}
