package core

import (
	"net/http"
)

// HeadersJson are set on every JSON response the gateway produces itself.
// Proxied responses keep the upstream headers instead.
var HeadersJson = map[string]string{

	"Content-Type": "application/json; charset=utf-8",

	// Ensure the browser respects the declared content type strictly.
	"X-Content-Type-Options": "nosniff",

	// Admin listings and errors must never be served from a cache.
	"Cache-Control": "no-store, no-cache, must-revalidate",
}

// HeadersText is used by the plain text root endpoint.
var HeadersText = map[string]string{
	"Content-Type":           "text/plain; charset=utf-8",
	"X-Content-Type-Options": "nosniff",
}

// SetHeaders applies one or more sets of headers to the response writer.
// Headers from later maps will overwrite headers from earlier maps if keys conflict.
func SetHeaders(w http.ResponseWriter, headers ...map[string]string) {
	for _, headerMap := range headers {
		for key, value := range headerMap {
			w.Header().Set(key, value)
		}
	}
}

// HeadersTls are added to every response served over TLS.
var HeadersTls = map[string]string{
	// One year; browsers then refuse plain http for the gateway host.
	"Strict-Transport-Security": "max-age=31536000",
}
