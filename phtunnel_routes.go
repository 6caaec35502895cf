package phtunnel

import (
	"net/http"

	"github.com/caasmo/phtunnel/config"
	"github.com/caasmo/phtunnel/core"
)

func route(cfg *config.Config, ap *core.App) {
	r := ap.Router()
	admin := func(pattern string, h http.HandlerFunc) {
		r.Handle(pattern, ap.AdminAuth(h))
	}

	// --- public routes ---
	r.HandleFunc("GET /{$}", ap.RootHandler)
	r.HandleFunc("GET /health", ap.HealthHandler)
	if cfg.Metrics.Endpoint != "" {
		r.HandleFunc("GET "+cfg.Metrics.Endpoint, ap.MetricsHandler)
	}

	// --- proxied routes ---
	// Every method reaches the ingestion host, only GET the assets host.
	r.HandleFunc("/ingest/{path...}", ap.IngestHandler)
	r.HandleFunc("GET /static/{path...}", ap.StaticHandler)

	// --- admin api ---
	admin("GET /admin/identifiers", ap.ListIdentifiersHandler)
	admin("POST /admin/identifiers", ap.UpsertIdentifierHandler)
	admin("GET /admin/identifiers/{identifier}", ap.GetIdentifierHandler)
	admin("DELETE /admin/identifiers/{identifier}", ap.DeleteIdentifierHandler)
	admin("POST /admin/identifiers/{identifier}/blocked-domains", ap.AddIdentifierDomainHandler)
	admin("DELETE /admin/identifiers/{identifier}/blocked-domains/{domain}", ap.DeleteIdentifierDomainHandler)
	admin("GET /admin/domains", ap.ListDomainsHandler)
	admin("POST /admin/domains", ap.AddDomainHandler)
	admin("DELETE /admin/domains/{domain}", ap.DeleteDomainHandler)
	admin("GET /admin/stats", ap.StatsHandler)
}
