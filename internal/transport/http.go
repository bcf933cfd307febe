package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/guidequeue/internal/mcp"
)

// MCPHandler handles MCP method dispatch.
type MCPHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// Options configures the router.
type Options struct {
	// AdminToken gates privileged methods. Empty disables the check.
	AdminToken string
	// MCP, when set, is mounted at /mcp.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	handler MCPHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler MCPHandler, opts Options) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(opts.Logger))
	r.Use(AdminMiddleware(opts.AdminToken))

	srv := &Server{handler: handler, logger: opts.Logger}

	r.Post("/rpc", srv.handleRPC)
	r.Get("/health", srv.handleHealth)
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	requestID, _ := RequestIDFromContext(r.Context())
	req, err := ParseRequest(r.Body)
	if err != nil {
		data := &ErrorData{RequestID: requestID}
		if errors.Is(err, errParse) {
			WriteError(w, nil, ErrParseCode, "parse error", data)
			return
		}
		WriteError(w, nil, ErrInvalidReq, "invalid request", data)
		return
	}

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(w, requestID, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, requestID string, req Request, err error) {
	var apiErr *mcp.APIError
	if !errors.As(err, &apiErr) {
		s.logger.Error("rpc failed", "request_id", requestID, "method", req.Method, "error", err)
		WriteError(w, req.ID, ErrInternal, "internal error", &ErrorData{RequestID: requestID})
		return
	}

	m := mappingFor(apiErr.Code)
	if m.code == ErrApplication {
		s.logger.Warn("rpc failed", "request_id", requestID, "method", req.Method, "code", apiErr.Code)
	}
	writeErrorStatus(w, m.status, req.ID, m.code, apiErr.Message, &ErrorData{
		Code:         apiErr.Code,
		Details:      apiErr.Details,
		RecoveryHint: apiErr.RecoveryHint,
		RequestID:    requestID,
	})
}
