package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID wraps chi's RequestID: callers without an X-Request-ID get a
// UUID instead of chi's host-prefixed counter, and the id is echoed back
// in the response.
func RequestID(next http.Handler) http.Handler {
	tagged := chimiddleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(RequestIDHeader, chimiddleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(chimiddleware.RequestIDHeader) == "" {
			r.Header.Set(chimiddleware.RequestIDHeader, uuid.NewString())
		}
		tagged.ServeHTTP(w, r)
	})
}

func RequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}
