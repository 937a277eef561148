package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "shadowroot-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	p := New(nil)
	srv := mcp.NewServer(testMCPImpl, nil)
	p.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text, result.IsError
}

func TestMCP_Hydrate(t *testing.T) {
	session := mcpSession(t)

	text, isErr := mcpCallTool(t, session, "shadowroot_hydrate", map[string]any{
		"html":   cardPage,
		"format": "flat",
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}

	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Output != `<my-card><p>Hi</p><span>light</span></my-card>` {
		t.Errorf("output: %s", res.Output)
	}
	if res.ShadowRoots != 1 {
		t.Errorf("shadow roots: got %d", res.ShadowRoots)
	}
}

func TestMCP_Hydrate_MissingInput(t *testing.T) {
	session := mcpSession(t)

	text, isErr := mcpCallTool(t, session, "shadowroot_hydrate", map[string]any{"format": "html"})
	if !isErr {
		t.Fatalf("expected a tool error, got %s", text)
	}
}

func TestMCP_Capability(t *testing.T) {
	session := mcpSession(t)

	text, isErr := mcpCallTool(t, session, "shadowroot_capability", map[string]any{})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var resp struct {
		Native bool `json:"native"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Native {
		t.Error("streaming parser should not report native support")
	}
}

func TestMCP_ListTools(t *testing.T) {
	session := mcpSession(t)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"shadowroot_hydrate", "shadowroot_capability"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}
