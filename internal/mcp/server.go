package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "guidequeue"
	serverVersion = "0.1.0"
)

// Config contains server configuration.
type Config struct {
	Handler *Handler
	// AdminToken gates privileged tools over HTTP. Empty grants every
	// caller admin rights.
	AdminToken    string
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode: the operator's own client, always admin
	admin := adminMiddleware(cfg.AdminToken)
	if cfg.TransportMode == "stdio" {
		admin = localAdminMiddleware()
	}
	server.AddReceivingMiddleware(admin, trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Handler)

	return server
}
