package core

import (
	"encoding/json"
	"net/http"
)

type jsonResponse struct {
	status int
	body   []byte
}

// JsonError is the body of every error response.
type JsonError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JsonOk is the body of mutations that return no resource.
type JsonOk struct {
	Ok bool `json:"ok"`
}

// writeJson marshals v and writes it with the given status.
func writeJson(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeJsonError(w, errorInternal)
		return
	}
	SetHeaders(w, HeadersJson)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeJsonErrorMessage writes a dynamic {"error": msg} response.
func writeJsonErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJson(w, status, JsonError{Error: msg})
}
