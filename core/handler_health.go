package core

import (
	"net/http"
	"time"
)

const rootMessage = "PostHog Tunnel is running"

type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// RootHandler
// Endpoint: GET /
// Authenticated: No
// Allowed Mimetype: text/plain
func (a *App) RootHandler(w http.ResponseWriter, r *http.Request) {
	SetHeaders(w, HeadersText)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rootMessage))
}

// HealthHandler reports liveness with the current time and the process
// uptime in seconds.
// Endpoint: GET /health
// Authenticated: No
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Uptime:    a.Uptime().Seconds(),
	})
}
