package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, server *sdkmcp.Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func toolState(t *testing.T, res *sdkmcp.CallToolResult) StateResponse {
	t.Helper()
	require.False(t, res.IsError, "tool error: %v", res.Content)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var resp StateResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestServer_ListsToolsAndDocs(t *testing.T) {
	ctx := context.Background()
	cs := connect(t, NewServer(Config{Handler: newTestHandler(t), TransportMode: "stdio"}))

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, name := range []string{
		MethodGetState, MethodListRoster, MethodCheckInCandidates, MethodAssignCandidates,
		MethodCheckIn, MethodTurun, MethodSetTag, MethodResetQueue, MethodAssignToSlot,
		MethodCompleteSlot, MethodRemoveFromQueue, MethodMoveToNextSession,
		MethodSwitchSession, MethodRecentActivity,
	} {
		require.True(t, names[name], "missing tool %s", name)
	}

	res, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "guidequeue://docs/rules"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "Assign to slot")
}

func TestServer_StdioCallsArePrivileged(t *testing.T) {
	ctx := context.Background()
	cs := connect(t, NewServer(Config{Handler: newTestHandler(t), TransportMode: "stdio"}))

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      MethodCheckIn,
		Arguments: map[string]any{"guide_id": 7},
	})
	require.NoError(t, err)
	require.Len(t, toolState(t, res).Queue, 1)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      MethodAssignToSlot,
		Arguments: map[string]any{"slot_id": 1, "guide_id": 7},
	})
	require.NoError(t, err)
	state := toolState(t, res)
	require.Empty(t, state.Queue)
	require.Equal(t, []int{7}, state.BusyIDs)
}

func TestServer_HTTPRequiresToken(t *testing.T) {
	ctx := context.Background()
	server := NewServer(Config{Handler: newTestHandler(t), AdminToken: "s3cret", TransportMode: "http"})
	httpServer := httptest.NewServer(sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil))
	t.Cleanup(httpServer.Close)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: httpServer.URL}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      MethodCheckIn,
		Arguments: map[string]any{"guide_id": 2},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      MethodResetQueue,
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestTokenMatches(t *testing.T) {
	header := http.Header{}
	require.True(t, TokenMatches(header, ""))
	require.False(t, TokenMatches(header, "s3cret"))
	require.False(t, TokenMatches(nil, "s3cret"))

	header.Set("Authorization", "Bearer s3cret")
	require.True(t, TokenMatches(header, "s3cret"))
	header.Set("Authorization", "Bearer wrong")
	require.False(t, TokenMatches(header, "s3cret"))
}
