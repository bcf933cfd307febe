package mcp

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const adminKey contextKey = iota

// WithAdmin marks ctx as carrying admin rights.
func WithAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// IsAdmin reports whether ctx carries admin rights.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey).(bool)
	return v
}

// TokenMatches reports whether the Authorization header carries token as a
// bearer token. An empty token matches every request.
func TokenMatches(header http.Header, token string) bool {
	if token == "" {
		return true
	}
	if header == nil {
		return false
	}
	got := strings.TrimSpace(strings.TrimPrefix(header.Get("Authorization"), "Bearer "))
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

// adminMiddleware grants admin rights from the bearer token on HTTP
// requests.
func adminMiddleware(token string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var header http.Header
			if extra := req.GetExtra(); extra != nil {
				header = extra.Header
			}
			return next(WithAdmin(ctx, TokenMatches(header, token)), method, req)
		}
	}
}

// localAdminMiddleware grants admin rights to every request. Stdio clients
// run on the operator's machine.
func localAdminMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(WithAdmin(ctx, true), method, req)
		}
	}
}
