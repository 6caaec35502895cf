package servemux

import (
	"net/http"

	"github.com/caasmo/phtunnel/router"
)

// ServeMuxRouter implements router.Router using net/http ServeMux
type ServeMuxRouter struct {
	*http.ServeMux
}

func (s *ServeMuxRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.ServeMux.ServeHTTP(w, r)
}

func (s *ServeMuxRouter) Handle(pattern string, handler http.Handler) {
	s.ServeMux.Handle(pattern, handler)
}

func (s *ServeMuxRouter) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.ServeMux.HandleFunc(pattern, handler)
}

func (s *ServeMuxRouter) Param(req *http.Request, key string) string {
	return req.PathValue(key)
}

func New() router.Router {
	return &ServeMuxRouter{ServeMux: http.NewServeMux()}
}
