package middleware

import (
	"net/http"

	"github.com/paperboy-dev/paperboy-api/internal/api/shared"
)

// TraceID assigns every request a random trace ID, carried through the
// context so log entries and error responses can be correlated.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
