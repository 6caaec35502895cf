package prerouter

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/caasmo/phtunnel/core"
)

// Cors reflects the caller's Origin so browser SDKs on any site can reach
// the gateway. Preflight requests are answered here with 204 and never
// reach the router or the upstream.
type Cors struct {
	app *core.App
}

func NewCors(app *core.App) *Cors {
	return &Cors{app: app}
}

func (c *Cors) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := c.app.Config().Cors
		origin := r.Header.Get("Origin")
		if !cfg.Activated || origin == "" || !originAllowed(cfg.AllowedOrigins, origin) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		reqMethod := r.Header.Get("Access-Control-Request-Method")
		if r.Method != http.MethodOptions || reqMethod == "" {
			next.ServeHTTP(w, r)
			return
		}

		h.Set("Access-Control-Allow-Methods", reqMethod)
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		}
		if cfg.MaxAge.Duration > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge.Seconds())))
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// originAllowed: an empty list or "*" allows every origin.
func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}
