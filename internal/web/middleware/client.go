package middleware

import (
	"net/http"

	"github.com/JonMunkholm/datagrid/internal/core"
)

// ClientContext stores the caller's address and user agent on the request
// context, where the grid service records them as session owner.
func ClientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), core.ClientInfo{
			IPAddress: ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
