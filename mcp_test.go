package docsection

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMCPImpl = &mcp.Implementation{Name: "docsection-test", Version: "0.1.0"}

func mcpSession(t *testing.T, sess *Session) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	sess.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func mcpCall(t *testing.T, cs *mcp.ClientSession, name string, args any, out any) *mcp.CallToolResult {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	if out != nil && !result.IsError {
		require.NotEmpty(t, result.Content)
		tc, ok := result.Content[0].(*mcp.TextContent)
		require.True(t, ok, "expected TextContent")
		require.NoError(t, json.Unmarshal([]byte(tc.Text), out))
	}
	return result
}

func TestMCP_Backends(t *testing.T) {
	cs := mcpSession(t, NewSession(newTestExtractor(t, DefaultConfig(), nil)))

	var out backendsOutput
	res := mcpCall(t, cs, "docsection_backends", map[string]any{}, &out)
	require.False(t, res.IsError)
	assert.Equal(t, []string{"Plain", "Rows", "Stream"}, out.Backends)
	assert.Equal(t, SelectAll, out.Selections[len(out.Selections)-1])
}

func TestMCP_ExtractThenSearch(t *testing.T) {
	a, b, c := threeFakes()
	a.text = "INTRODUCTION\nHello world.\n\nMETHODS\nWe did X."
	cs := mcpSession(t, NewSession(newTestExtractor(t, DefaultConfig(), fakeRegistry(a, b, c))))
	path := writeFile(t, "doc.txt", "ignored")

	var ext extractOutput
	res := mcpCall(t, cs, "docsection_extract", map[string]any{"path": path, "backend": "Plain"}, &ext)
	require.False(t, res.IsError)
	assert.Equal(t, "Plain", ext.Backend)
	assert.Equal(t, a.text, ext.Text)

	var found searchOutput
	res = mcpCall(t, cs, "docsection_search", map[string]any{"query": "methods"}, &found)
	require.False(t, res.IsError)
	assert.Equal(t, []string{"METHODS\nWe did X."}, found.Results)

	var missing searchOutput
	mcpCall(t, cs, "docsection_search", map[string]any{"query": "nowhere"}, &missing)
	assert.Equal(t, []string{NoMatchesFound}, missing.Results)
}

func TestMCP_SearchWithoutDocumentIsToolError(t *testing.T) {
	cs := mcpSession(t, NewSession(newTestExtractor(t, DefaultConfig(), nil)))

	res := mcpCall(t, cs, "docsection_search", map[string]any{"query": "x"}, nil)
	assert.True(t, res.IsError)
}

func TestMCP_UnknownBackendIsToolError(t *testing.T) {
	cs := mcpSession(t, NewSession(newTestExtractor(t, DefaultConfig(), nil)))
	path := writeFile(t, "doc.txt", "x")

	res := mcpCall(t, cs, "docsection_extract", map[string]any{"path": path, "backend": "Bogus"}, nil)
	assert.True(t, res.IsError)
}

func TestMCP_Compare(t *testing.T) {
	a, b, c := threeFakes()
	cs := mcpSession(t, NewSession(newTestExtractor(t, DefaultConfig(), fakeRegistry(a, b, c))))
	path := writeFile(t, "doc.txt", "ignored")

	var out compareOutput
	res := mcpCall(t, cs, "docsection_compare", map[string]any{"path": path}, &out)
	require.False(t, res.IsError)
	require.Len(t, out.Results, 3)
	assert.Equal(t, "Stream", out.Results[2].Backend)
	assert.Equal(t, 10, out.Results[2].Chars)
}
