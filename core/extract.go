package core

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// BodyKind classifies the outcome of inspecting a request body for an
// identifier.
type BodyKind int

const (
	// BodyAbsent: not a POST, or a POST without body bytes.
	BodyAbsent BodyKind = iota
	// BodyNotJSON: content type is not JSON, or the bytes do not parse.
	BodyNotJSON
	// BodyJSONWithoutField: valid JSON carrying no usable token/api_key.
	BodyJSONWithoutField
	// BodyJSONWithField: valid JSON with a non-empty string identifier.
	BodyJSONWithField
)

func (k BodyKind) String() string {
	switch k {
	case BodyAbsent:
		return "absent"
	case BodyNotJSON:
		return "not_json"
	case BodyJSONWithoutField:
		return "json_without_field"
	case BodyJSONWithField:
		return "json_with_field"
	default:
		return "unknown"
	}
}

// BodyInspection is the result of InspectBody. Identifier is set only for
// BodyJSONWithField.
type BodyInspection struct {
	Kind       BodyKind
	Identifier string
}

var arrayConfigPath = regexp.MustCompile(`/array/([^/]+)/config`)

// IdentifierFromURL looks for the project identifier in the query string
// (token, then _) and then in a /array/{identifier}/config path segment.
// It never touches the body.
func IdentifierFromURL(u *url.URL) string {
	q := u.Query()
	if id := q.Get("token"); id != "" {
		return id
	}
	if id := q.Get("_"); id != "" {
		return id
	}

	m := arrayConfigPath.FindStringSubmatch(u.EscapedPath())
	if m == nil {
		return ""
	}
	id, err := url.PathUnescape(m[1])
	if err != nil {
		id = m[1]
	}
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// InspectBody reads the identifier from a buffered POST body. Only JSON
// objects are inspected: token wins, api_key is used when token is absent
// or null, and the chosen value must be a non-empty string.
func InspectBody(method, contentType string, body []byte) BodyInspection {
	if method != http.MethodPost || len(body) == 0 {
		return BodyInspection{Kind: BodyAbsent}
	}
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return BodyInspection{Kind: BodyNotJSON}
	}
	if !json.Valid(body) {
		return BodyInspection{Kind: BodyNotJSON}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Valid JSON that is not an object: arrays, strings, numbers.
		return BodyInspection{Kind: BodyJSONWithoutField}
	}

	raw, ok := fields["token"]
	if !ok || isJSONNull(raw) {
		raw, ok = fields["api_key"]
	}
	if !ok {
		return BodyInspection{Kind: BodyJSONWithoutField}
	}

	var id string
	if err := json.Unmarshal(raw, &id); err != nil || id == "" {
		return BodyInspection{Kind: BodyJSONWithoutField}
	}
	return BodyInspection{Kind: BodyJSONWithField, Identifier: id}
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
