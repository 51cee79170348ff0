package middleware

import "net/http"

// MaxBodySize limits JSON request bodies. Requests that announce a larger
// Content-Length are refused up front; the rest are cut off by
// http.MaxBytesReader. Upload routes apply their own, larger limits.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
