package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/caasmo/phtunnel/blocklist"
	"github.com/caasmo/phtunnel/notify"
)

// maxAdminBodySize bounds admin request bodies.
const maxAdminBodySize = 64 << 10

type identifierRequest struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label"`
}

type domainRequest struct {
	Domain string `json:"domain"`
}

// ListIdentifiersHandler
// Endpoint: GET /admin/identifiers
// Authenticated: Yes
func (a *App) ListIdentifiersHandler(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, a.store.Entries())
}

// GetIdentifierHandler
// Endpoint: GET /admin/identifiers/{identifier}
// Authenticated: Yes
func (a *App) GetIdentifierHandler(w http.ResponseWriter, r *http.Request) {
	id := a.router.Param(r, "identifier")
	entry, ok := a.store.Entry(id)
	if !ok {
		writeJsonErrorMessage(w, http.StatusNotFound, (&blocklist.NotFoundError{Kind: blocklist.ErrIdentifierNotFound, Key: id}).Error())
		return
	}
	writeJson(w, http.StatusOK, entry)
}

// UpsertIdentifierHandler blocks an identifier or relabels it.
// Endpoint: POST /admin/identifiers
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpsertIdentifierHandler(w http.ResponseWriter, r *http.Request) {
	var req identifierRequest
	if err := decodeJsonBody(r, &req); err != nil {
		writeJsonError(w, errorInvalidRequestBody)
		return
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	req.Label = strings.TrimSpace(req.Label)
	if req.Identifier == "" {
		writeJsonError(w, errorMissingIdentifier)
		return
	}
	if req.Label == "" {
		writeJsonError(w, errorMissingLabel)
		return
	}

	entry, err := a.store.UpsertIdentifier(req.Identifier, req.Label)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}

	a.audit(r.Context(), "identifier blocked", map[string]interface{}{
		"identifier": entry.Identifier,
		"label":      entry.Label,
	})
	writeJson(w, http.StatusCreated, entry)
}

// DeleteIdentifierHandler
// Endpoint: DELETE /admin/identifiers/{identifier}
// Authenticated: Yes
func (a *App) DeleteIdentifierHandler(w http.ResponseWriter, r *http.Request) {
	id := a.router.Param(r, "identifier")
	if err := a.store.RemoveIdentifier(id); err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.audit(r.Context(), "identifier unblocked", map[string]interface{}{"identifier": id})
	writeJsonOk(w, okTrue)
}

// ListDomainsHandler lists the globally blocked domains.
// Endpoint: GET /admin/domains
// Authenticated: Yes
func (a *App) ListDomainsHandler(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, a.store.GlobalDomains())
}

// AddDomainHandler blocks a domain for every identifier. Adding a domain
// twice is not an error.
// Endpoint: POST /admin/domains
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) AddDomainHandler(w http.ResponseWriter, r *http.Request) {
	var req domainRequest
	if err := decodeJsonBody(r, &req); err != nil {
		writeJsonError(w, errorInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Domain) == "" {
		writeJsonError(w, errorMissingDomain)
		return
	}

	added, err := a.store.AddGlobalDomain(req.Domain)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	if added {
		a.audit(r.Context(), "domain blocked globally", map[string]interface{}{
			"domain": blocklist.NormalizeDomain(req.Domain),
		})
	}
	writeJsonOk(w, createdTrue)
}

// DeleteDomainHandler
// Endpoint: DELETE /admin/domains/{domain}
// Authenticated: Yes
func (a *App) DeleteDomainHandler(w http.ResponseWriter, r *http.Request) {
	domain := a.router.Param(r, "domain")
	if err := a.store.RemoveGlobalDomain(domain); err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.audit(r.Context(), "domain unblocked globally", map[string]interface{}{
		"domain": blocklist.NormalizeDomain(domain),
	})
	writeJsonOk(w, okTrue)
}

// AddIdentifierDomainHandler blocks a domain for one identifier and returns
// the updated entry. An unknown identifier is reported before a missing
// domain.
// Endpoint: POST /admin/identifiers/{identifier}/blocked-domains
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) AddIdentifierDomainHandler(w http.ResponseWriter, r *http.Request) {
	id := a.router.Param(r, "identifier")
	if _, ok := a.store.Entry(id); !ok {
		writeJsonErrorMessage(w, http.StatusNotFound, (&blocklist.NotFoundError{Kind: blocklist.ErrIdentifierNotFound, Key: id}).Error())
		return
	}

	var req domainRequest
	if err := decodeJsonBody(r, &req); err != nil {
		writeJsonError(w, errorInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Domain) == "" {
		writeJsonError(w, errorMissingDomain)
		return
	}

	entry, added, err := a.store.AddIdentifierDomain(id, req.Domain)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	if added {
		a.audit(r.Context(), "domain blocked for identifier", map[string]interface{}{
			"identifier": id,
			"domain":     blocklist.NormalizeDomain(req.Domain),
		})
	}
	writeJson(w, http.StatusOK, entry)
}

// DeleteIdentifierDomainHandler
// Endpoint: DELETE /admin/identifiers/{identifier}/blocked-domains/{domain}
// Authenticated: Yes
func (a *App) DeleteIdentifierDomainHandler(w http.ResponseWriter, r *http.Request) {
	id := a.router.Param(r, "identifier")
	domain := a.router.Param(r, "domain")
	if err := a.store.RemoveIdentifierDomain(id, domain); err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.audit(r.Context(), "domain unblocked for identifier", map[string]interface{}{
		"identifier": id,
		"domain":     blocklist.NormalizeDomain(domain),
	})
	writeJsonOk(w, okTrue)
}

// writeStoreError maps store errors to responses: not found 404, invalid
// input 400, anything else (persistence) 500 with the cause.
func (a *App) writeStoreError(w http.ResponseWriter, err error) {
	var nf *blocklist.NotFoundError
	switch {
	case errors.As(err, &nf):
		writeJsonErrorMessage(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, blocklist.ErrInvalidInput):
		writeJsonErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Error("admin: blocklist mutation failed", "error", err)
		writeJson(w, http.StatusInternalServerError, JsonError{Error: "Internal server error", Message: err.Error()})
	}
}

// audit logs an applied mutation and forwards it to the notifier.
func (a *App) audit(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		args = append(args, k, v)
	}
	a.logger.Info("admin: "+msg, args...)

	if a.notifier == nil {
		return
	}
	err := a.notifier.Send(ctx, notify.Notification{
		Type:    notify.Audit,
		Source:  "admin",
		Message: msg,
		Fields:  fields,
	})
	if err != nil {
		a.logger.Warn("admin: notification failed", "error", err)
	}
}

func decodeJsonBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxAdminBodySize)).Decode(v)
}
