package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/datagrid/internal/config"
	"github.com/JonMunkholm/datagrid/internal/logging"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns middleware that validates the X-API-Key header against
// the configured keys. When RequireAPIKey is false every request passes.
func APIKeyAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	keys := make([][]byte, len(cfg.APIKeys))
	for i, k := range cfg.APIKeys {
		keys[i] = []byte(k)
	}

	return func(next http.Handler) http.Handler {
		if !cfg.RequireAPIKey {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)

			var status int
			var code, msg string
			switch {
			case apiKey == "":
				status, code, msg = http.StatusUnauthorized, "AUTH001", "missing API key"
			case !isValidAPIKey([]byte(apiKey), keys):
				status, code, msg = http.StatusForbidden, "AUTH002", "invalid API key"
			default:
				next.ServeHTTP(w, r)
				return
			}

			logging.FromContext(r.Context()).Warn("auth: "+msg,
				"path", r.URL.Path,
				"method", r.Method,
				"ip", ClientIP(r),
			)
			writeError(w, status, code, msg)
		})
	}
}

// isValidAPIKey compares against every key in constant time.
func isValidAPIKey(key []byte, validKeys [][]byte) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare(key, validKey)
	}
	return valid == 1
}
