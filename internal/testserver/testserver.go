// Package testserver runs the full HTTP stack against an in-process store
// for end-to-end tests.
package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/guidequeue/internal/clock"
	"github.com/rpggio/guidequeue/internal/domain/activity"
	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/rpggio/guidequeue/internal/domain/schedule"
	"github.com/rpggio/guidequeue/internal/mcp"
	"github.com/rpggio/guidequeue/internal/repository"
	"github.com/rpggio/guidequeue/internal/sqlite"
	"github.com/rpggio/guidequeue/internal/store"
	"github.com/rpggio/guidequeue/internal/transport"
)

type Options struct {
	AdminToken string
	Capacity   int
	RosterSize int
	// KV replaces the default in-memory sqlite store.
	KV repository.KVRepository
}

type TestServer struct {
	Server   *httptest.Server
	Schedule *schedule.Service
	Clock    *clock.Fake
	Token    string
}

func New(t *testing.T, opts Options) *TestServer {
	t.Helper()
	if opts.RosterSize == 0 {
		opts.RosterSize = 10
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	kv := opts.KV
	if kv == nil {
		kv = sqlite.NewKVRepository(db)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roster, err := guide.NewDirectory(guide.DefaultRoster(opts.RosterSize))
	require.NoError(t, err)

	fake := clock.NewFake(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	st := store.New(kv, store.Options{Capacity: opts.Capacity, Logger: logger})
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	scheduleSvc := schedule.NewService(roster, st, activitySvc, schedule.Options{Clock: fake, Logger: logger})
	scheduleSvc.Load(context.Background())

	handler := mcp.NewHandler(scheduleSvc, activitySvc)
	mcpServer := mcp.NewServer(mcp.Config{
		Handler:       handler,
		AdminToken:    opts.AdminToken,
		TransportMode: "http",
		Logger:        logger,
	})
	streamable := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	server := httptest.NewServer(transport.NewServer(handler, transport.Options{
		AdminToken: opts.AdminToken,
		MCP:        streamable,
		Logger:     logger,
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		Schedule: scheduleSvc,
		Clock:    fake,
		Token:    opts.AdminToken,
	}
}

// RPCError is the error member of a JSON-RPC reply.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Code string `json:"code"`
	} `json:"data"`
}

// Call posts one JSON-RPC request to /rpc. An empty token sends no
// Authorization header.
func (ts *TestServer) Call(t *testing.T, token, method string, params any) (json.RawMessage, *RPCError) {
	t.Helper()

	body := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		body["params"] = params
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	return reply.Result, reply.Error
}

// State calls get_state and decodes the reply.
func (ts *TestServer) State(t *testing.T) mcp.StateResponse {
	t.Helper()
	raw, rpcErr := ts.Call(t, "", mcp.MethodGetState, nil)
	require.Nil(t, rpcErr)
	var state mcp.StateResponse
	require.NoError(t, json.Unmarshal(raw, &state))
	return state
}

// Admin calls method with the admin token and requires success.
func (ts *TestServer) Admin(t *testing.T, method string, params any) mcp.StateResponse {
	t.Helper()
	raw, rpcErr := ts.Call(t, ts.Token, method, params)
	require.Nil(t, rpcErr, "%s failed: %+v", method, rpcErr)
	var state mcp.StateResponse
	require.NoError(t, json.Unmarshal(raw, &state))
	return state
}
