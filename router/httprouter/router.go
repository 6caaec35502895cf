package httprouter

import (
	"net/http"
	"strings"

	"github.com/caasmo/phtunnel/router"
	jshttprouter "github.com/julienschmidt/httprouter"
)

// anyMethods are registered for patterns that carry no method.
var anyMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// Router implements router.Router on top of julienschmidt/httprouter,
// translating ServeMux style patterns to httprouter paths.
type Router struct {
	rt *jshttprouter.Router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	method, path := splitPattern(pattern)
	path = convertPath(path)
	if method == "" {
		for _, m := range anyMethods {
			r.rt.Handler(m, path, handler)
		}
		return
	}
	r.rt.Handler(method, path, handler)
}

func (r *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	r.Handle(pattern, http.HandlerFunc(handler))
}

// Param reads the named parameter stored by httprouter in the request
// context. Catch-all values lose their leading slash to match ServeMux.
func (r *Router) Param(req *http.Request, key string) string {
	v := jshttprouter.ParamsFromContext(req.Context()).ByName(key)
	return strings.TrimPrefix(v, "/")
}

func New() router.Router {
	return &Router{rt: jshttprouter.New()}
}

func splitPattern(pattern string) (method, path string) {
	if i := strings.IndexByte(pattern, ' '); i > 0 && !strings.HasPrefix(pattern, "/") {
		return pattern[:i], strings.TrimSpace(pattern[i+1:])
	}
	return "", pattern
}

// convertPath rewrites {name} to :name, {name...} to *name and drops {$}.
func convertPath(path string) string {
	path = strings.TrimSuffix(path, "{$}")
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := seg[1 : len(seg)-1]
		if strings.HasSuffix(name, "...") {
			segments[i] = "*" + strings.TrimSuffix(name, "...")
		} else {
			segments[i] = ":" + name
		}
	}
	return strings.Join(segments, "/")
}
