// Package router defines the routing contract used by the gateway and the
// adapters that implement it.
//
// Patterns follow the net/http ServeMux syntax: an optional method, a path,
// named segments written {name} and a trailing catch-all {name...}. A pattern
// without a method matches every method. "{$}" anchors a path ending in a
// slash so that it matches only itself.
package router

import (
	"net/http"
)

type Router interface {
	http.Handler
	Handle(pattern string, handler http.Handler)
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))

	// Param returns the value of the named path segment of a matched
	// request, or "" if the route has no such segment.
	Param(req *http.Request, key string) string
}
