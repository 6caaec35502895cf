package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/caasmo/phtunnel/blocklist"
	"github.com/caasmo/phtunnel/config"
	"github.com/caasmo/phtunnel/notify"
	"github.com/caasmo/phtunnel/router/servemux"
)

const testAdminKey = "test-admin-key"

var errDiskFull = errors.New("disk full")

// memPersister keeps the blocklist document in memory. Save fails with
// saveErr when set.
type memPersister struct {
	mu      sync.Mutex
	data    *blocklist.Data
	saveErr error
	saves   int
}

func (m *memPersister) Load() (*blocklist.Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return &blocklist.Data{}, nil
	}
	return m.data.Clone(), nil
}

func (m *memPersister) Save(d *blocklist.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = d.Clone()
	return nil
}

func (m *memPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// mapCache is a synchronous cache.Cache. Ristretto applies writes
// asynchronously, which makes hit assertions flaky.
type mapCache struct {
	mu   sync.Mutex
	m    map[string]blocklist.Decision
	gets int
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{m: make(map[string]blocklist.Decision)}
}

func (c *mapCache) Get(key string) (blocklist.Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.m[key]
	if ok {
		c.hits++
	}
	return d, ok
}

func (c *mapCache) Set(key string, value blocklist.Decision, cost int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return true
}

func (c *mapCache) SetWithTTL(key string, value blocklist.Decision, cost int64, ttl time.Duration) bool {
	return c.Set(key, value, cost)
}

func (c *mapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]blocklist.Decision)
}

func (c *mapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// recordingNotifier keeps every notification it is sent.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Send(ctx context.Context, notification notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) Sent() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Notification(nil), n.sent...)
}

// upstreamRequest is what the stub upstream saw.
type upstreamRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     string
}

// stubUpstream is a TLS server standing in for the PostHog hosts.
type stubUpstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []upstreamRequest
	status   int
	header   http.Header
	body     string
}

func newStubUpstream(t *testing.T) *stubUpstream {
	t.Helper()
	s := &stubUpstream{status: http.StatusOK, body: `{"status":1}`, header: http.Header{}}
	s.header.Set("Content-Type", "application/json")
	s.header.Set("X-Upstream", "stub")
	s.Server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, upstreamRequest{
			Method:   r.Method,
			Path:     r.URL.EscapedPath(),
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     string(b),
		})
		status, body := s.status, s.body
		for k, vv := range s.header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

// Host returns host:port, the form the forwarder expects.
func (s *stubUpstream) Host() string {
	return strings.TrimPrefix(s.URL, "https://")
}

func (s *stubUpstream) Requests() []upstreamRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]upstreamRequest(nil), s.requests...)
}

type testEnv struct {
	app       *App
	persister *memPersister
	upstream  *stubUpstream
	notifier  *recordingNotifier
	cache     *mapCache
}

// newTestEnv builds an App with an in-memory blocklist and both upstream
// hosts pointing at one stub server. Every route is registered on a
// servemux router.
func newTestEnv(t *testing.T, initial *blocklist.Data, mutate func(*config.Config)) *testEnv {
	t.Helper()

	persister := &memPersister{data: initial}
	store, err := blocklist.NewStore(persister)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	upstream := newStubUpstream(t)
	cfg := config.NewDefaultConfig()
	cfg.Env = config.EnvTest
	cfg.Admin.APIKey = testAdminKey
	cfg.Upstream.IngestHost = upstream.Host()
	cfg.Upstream.AssetsHost = upstream.Host()
	if mutate != nil {
		mutate(cfg)
	}

	env := &testEnv{
		persister: persister,
		upstream:  upstream,
		notifier:  &recordingNotifier{},
		cache:     newMapCache(),
	}
	env.app, err = NewApp(
		WithStore(store),
		WithRouter(servemux.New()),
		WithConfigProvider(config.NewProvider(cfg)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithNotifier(env.notifier),
		WithForwarder(NewForwarder(upstream.Client())),
		WithCache(env.cache),
	)
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	registerTestRoutes(env.app)
	return env
}

func registerTestRoutes(a *App) {
	r := a.Router()
	admin := func(pattern string, h http.HandlerFunc) {
		r.Handle(pattern, a.AdminAuth(h))
	}

	r.HandleFunc("GET /{$}", a.RootHandler)
	r.HandleFunc("GET /health", a.HealthHandler)
	r.HandleFunc("/ingest/{path...}", a.IngestHandler)
	r.HandleFunc("GET /static/{path...}", a.StaticHandler)
	r.HandleFunc("GET "+a.Config().Metrics.Endpoint, a.MetricsHandler)

	admin("GET /admin/identifiers", a.ListIdentifiersHandler)
	admin("POST /admin/identifiers", a.UpsertIdentifierHandler)
	admin("GET /admin/identifiers/{identifier}", a.GetIdentifierHandler)
	admin("DELETE /admin/identifiers/{identifier}", a.DeleteIdentifierHandler)
	admin("POST /admin/identifiers/{identifier}/blocked-domains", a.AddIdentifierDomainHandler)
	admin("DELETE /admin/identifiers/{identifier}/blocked-domains/{domain}", a.DeleteIdentifierDomainHandler)
	admin("GET /admin/domains", a.ListDomainsHandler)
	admin("POST /admin/domains", a.AddDomainHandler)
	admin("DELETE /admin/domains/{domain}", a.DeleteDomainHandler)
	admin("GET /admin/stats", a.StatsHandler)
}

// do serves req through the app router and returns the recorded response.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.app.Router().ServeHTTP(rr, req)
	return rr
}

// admin builds an authenticated admin request.
func adminRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Authorization", "Bearer "+testAdminKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}
