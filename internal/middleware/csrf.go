package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// PlaintextHTTP marks requests as plain HTTP for gorilla/csrf, which
// otherwise assumes TLS and rejects same-origin POSTs during local
// development. It must run before csrf.Protect.
func PlaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
