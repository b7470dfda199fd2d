package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestObserver records one finished request. *metrics.Metrics satisfies it.
type RequestObserver interface {
	ObserveRequest(path, method string, status int, elapsed time.Duration)
}

// Metrics labels requests with the matched chi route pattern so ids in the
// path do not explode label cardinality. Unmatched requests share one label.
func Metrics(o RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					path = p
				}
			}
			o.ObserveRequest(path, r.Method, rec.status, time.Since(start))
		})
	}
}
