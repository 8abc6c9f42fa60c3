package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Probes scraped without credentials.
const (
	healthPath  = "/healthz"
	metricsPath = "/metrics"
)

// BearerAuthMiddleware checks the Authorization header against the configured API keys.
// Blank keys are ignored; with no keys left every request passes. The health and metrics
// probes are always open.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	var keys [][]byte
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == healthPath || r.URL.Path == metricsPath {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := bearerToken(r)
			if msg == "" && !knownKey(keys, token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="querykit"`)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token, or returns a client-facing reason it could not.
func bearerToken(r *http.Request) ([]byte, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, "missing authorization header"
	}
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, "authorization header must use Bearer scheme"
	}
	return []byte(token), ""
}

// knownKey compares against every key in constant time.
func knownKey(keys [][]byte, token []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, token)
	}
	return found == 1
}
