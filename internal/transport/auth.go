package transport

import (
	"net/http"

	"github.com/rpggio/guidequeue/internal/mcp"
)

// AdminMiddleware grants admin rights to requests whose bearer token
// matches token. An empty token grants them to every request.
func AdminMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := mcp.WithAdmin(r.Context(), mcp.TokenMatches(r.Header, token))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
