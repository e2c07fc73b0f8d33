package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ByteEmpire/roompartner/internal/metrics"
)

// Metrics returns middleware that records Prometheus metrics. The chi
// wrapper is used instead of a plain status-capturing writer because it
// preserves the optional ResponseWriter interfaces; the websocket
// upgrade on /ws needs http.Hijacker to survive the middleware chain.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// Hijacked connections never call WriteHeader; the handshake
		// that preceded the takeover was a success.
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, path,
		).Observe(duration)
	})
}

// normalizePath normalizes paths to avoid high cardinality in metrics.
func normalizePath(path string) string {
	patterns := []struct{ prefix, normalized string }{
		{"/chat/messages/read/", "/chat/messages/read/:id"},
		{"/chat/messages/", "/chat/messages/:id"},
	}
	for _, p := range patterns {
		if strings.HasPrefix(path, p.prefix) && len(path) > len(p.prefix) {
			return p.normalized
		}
	}
	return path
}
