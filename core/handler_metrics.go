package core

import (
	"net"
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves Prometheus metrics in the standard format
// Endpoint: GET /metrics (configurable)
// Authenticated: No, restricted to the configured client IPs
// Allowed Mimetype: text/plain
func (a *App) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.Config().Metrics
	if !cfg.Activated {
		writeJsonError(w, errorNotFound)
		return
	}

	clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		clientIP = r.RemoteAddr
	}

	// Unknown clients get a 404 so the endpoint is not advertised.
	if !slices.Contains(cfg.AllowedIPs, clientIP) {
		writeJsonError(w, errorNotFound)
		return
	}

	promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
