package core

import (
	"encoding/json"
	"net/http"
)

// precomputeResponse marshals body once, during initialization.
// Handlers write the stored bytes directly, avoiding repeated JSON
// marshaling for the fixed responses below.
func precomputeResponse(status int, body interface{}) jsonResponse {
	b, _ := json.Marshal(body)
	return jsonResponse{status: status, body: b}
}

func precomputeError(status int, msg string) jsonResponse {
	return precomputeResponse(status, JsonError{Error: msg})
}

// Precomputed error and ok responses with status codes
var (
	//errors
	errorUnauthorized       = precomputeError(http.StatusUnauthorized, "Unauthorized")
	errorInvalidRequestBody = precomputeError(http.StatusBadRequest, "Invalid request body")
	errorMissingIdentifier  = precomputeError(http.StatusBadRequest, "Missing identifier")
	errorMissingLabel       = precomputeError(http.StatusBadRequest, "Missing label")
	errorMissingDomain      = precomputeError(http.StatusBadRequest, "Missing domain")
	errorNotFound           = precomputeError(http.StatusNotFound, "Not found")
	errorInternal           = precomputeError(http.StatusInternalServerError, "Internal server error")

	// oks
	okTrue      = precomputeResponse(http.StatusOK, JsonOk{Ok: true})
	createdTrue = precomputeResponse(http.StatusCreated, JsonOk{Ok: true})
)

// For successful precomputed responses
func writeJsonOk(w http.ResponseWriter, resp jsonResponse) {
	SetHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}

// writeJsonError writes a precomputed JSON error response
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	SetHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}
