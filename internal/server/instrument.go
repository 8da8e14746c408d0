package server

import (
	"net/http"

	"nodeAccess/internal/metrics"
)

const (
	routeHealthz = "/healthz"
	routeWebhook = "/webhook"
	routeMetrics = "/metrics"
)

var routes = map[string]bool{
	routeHealthz: true,
	routeWebhook: true,
	routeMetrics: true,
}

// routeLabel keeps the path label bounded to registered routes.
func routeLabel(path string) string {
	if routes[path] {
		return path
	}
	return "other"
}

// instrument records method, route and status class for every request.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		metrics.HTTPRequests.WithLabelValues(r.Method, routeLabel(r.URL.Path), statusLabel(ww.status)).Inc()
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}
