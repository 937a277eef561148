package pipeline

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/shadowroot/kit"
)

// RegisterMCP registers the pipeline tools on an MCP server.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerHydrateTool(srv)
	p.registerCapabilityTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- hydrate ---

func (p *Pipeline) registerHydrateTool(srv *mcp.Server) {
	formats := make([]any, 0, len(Formats()))
	for _, f := range Formats() {
		formats = append(formats, string(f))
	}
	tool := &mcp.Tool{
		Name:        "shadowroot_hydrate",
		Description: "Attach declarative shadow roots in server-rendered HTML and return the hydrated page as declarative HTML, flattened HTML or Markdown.",
		InputSchema: inputSchema(map[string]any{
			"html":   map[string]any{"type": "string", "description": "HTML markup to hydrate"},
			"url":    map[string]any{"type": "string", "description": "Page to fetch and hydrate instead of html"},
			"format": map[string]any{"type": "string", "enum": formats, "description": "Output format (default from config)"},
		}, nil),
	}

	kit.RegisterMCPTool(srv, tool, p.Endpoint(), kit.DecodeArgs[Request]())
}

// --- capability ---

func (p *Pipeline) registerCapabilityTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "shadowroot_capability",
		Description: "Report whether the configured parser attaches declarative shadow roots natively.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]bool{"native": p.NativeSupport()}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeArgs[struct{}]())
}
