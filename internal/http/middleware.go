package http

import "net/http"

// AdminTokenMiddleware guards the back-office routes with a shared token in
// X-Admin-Token. When no token is configured the guard is disabled (local
// development); real authentication sits in front of this service.
func AdminTokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("X-Admin-Token") != token {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
