package prerouter

import (
	"net/http"
	"testing"

	"github.com/caasmo/phtunnel/blocklist"
)

type memPersister struct{ data *blocklist.Data }

func (m *memPersister) Load() (*blocklist.Data, error) {
	if m.data == nil {
		return &blocklist.Data{}, nil
	}
	return m.data, nil
}

func (m *memPersister) Save(d *blocklist.Data) error {
	m.data = d
	return nil
}

func newTestStore(t *testing.T) *blocklist.Store {
	t.Helper()
	s, err := blocklist.NewStore(&memPersister{})
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return s
}

// nopRouter satisfies router.Router for middleware tests.
type nopRouter struct{}

func (nopRouter) Handle(string, http.Handler)                                 {}
func (nopRouter) HandleFunc(string, func(http.ResponseWriter, *http.Request)) {}
func (nopRouter) ServeHTTP(http.ResponseWriter, *http.Request)                {}
func (nopRouter) Param(*http.Request, string) string                          { return "" }
