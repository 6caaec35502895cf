package core

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/caasmo/phtunnel/blocklist"
)

// IngestHandler proxies to the ingestion host with the /ingest prefix
// stripped from the path.
// Endpoint: ALL /ingest/*
// Authenticated: No
func (a *App) IngestHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.EscapedPath(), "/ingest")
	if path == "" {
		path = "/"
	}
	a.proxy(w, r, a.Config().Upstream.IngestHost, path)
}

// StaticHandler proxies to the static assets host, keeping the full path.
// Endpoint: GET /static/*
// Authenticated: No
func (a *App) StaticHandler(w http.ResponseWriter, r *http.Request) {
	a.proxy(w, r, a.Config().Upstream.AssetsHost, r.URL.EscapedPath())
}

// proxy runs the blocklist check and forwards the request to targetHost.
//
// The identifier is first looked up in the URL. If found, a POST body is
// streamed upstream untouched. Otherwise a POST body is buffered, inspected
// for token/api_key and the buffered bytes are forwarded.
func (a *App) proxy(w http.ResponseWriter, r *http.Request, targetHost, path string) {
	identifier := IdentifierFromURL(r.URL)

	out := Outbound{
		TargetHost: targetHost,
		Method:     r.Method,
		Path:       path,
		RawQuery:   r.URL.RawQuery,
		Header:     r.Header,
	}

	if r.Method == http.MethodPost {
		if identifier != "" {
			out.Body = r.Body
			out.ContentLength = r.ContentLength
		} else {
			buf, err := io.ReadAll(r.Body)
			if err != nil {
				a.logger.Error("proxy: failed to read request body", "path", path, "error", err)
				writeJson(w, http.StatusInternalServerError, JsonError{Error: "Internal server error", Message: err.Error()})
				return
			}
			inspection := InspectBody(r.Method, r.Header.Get("Content-Type"), buf)
			identifier = inspection.Identifier
			out.Body = bytes.NewReader(buf)
			out.ContentLength = int64(len(buf))
			a.logger.Debug("proxy: inspected body", "kind", inspection.Kind.String(), "bytes", len(buf))
		}
	}

	hostname := blocklist.RequestHost(r)
	if a.sketch != nil {
		a.sketch.Observe(identifier)
	}

	decision := a.decide(identifier, hostname)
	if a.decisions != nil {
		a.decisions.WithLabelValues(decision.Rule.String()).Inc()
	}
	if decision.Blocked {
		a.logger.Info("proxy: request blocked",
			"rule", decision.Rule.String(),
			"identifier", identifier,
			"hostname", hostname,
			"path", path)
		writeJsonErrorMessage(w, http.StatusForbidden, decision.Reason())
		return
	}

	resp, err := a.forwarder.Forward(r.Context(), out)
	if err != nil {
		a.logger.Error("proxy: forward failed", "target", targetHost, "path", path, "error", err)
		writeJson(w, http.StatusInternalServerError, JsonError{Error: "Internal server error", Message: err.Error()})
		return
	}
	defer resp.Body.Close()

	if _, err := relayResponse(w, resp); err != nil {
		a.logger.Warn("proxy: relaying response interrupted", "target", targetHost, "path", path, "error", err)
	}
}

// decide consults the decision cache before the index.
func (a *App) decide(identifier, hostname string) blocklist.Decision {
	idx := a.store.Index()
	cfg := a.Config().Cache
	if a.cache == nil || !cfg.Activated {
		return idx.Decide(identifier, hostname)
	}

	key := idx.DecisionKey(identifier, hostname)
	if d, ok := a.cache.Get(key); ok {
		return d
	}
	d := idx.Decide(identifier, hostname)
	a.cache.SetWithTTL(key, d, 1, cfg.TTL.Duration)
	return d
}
