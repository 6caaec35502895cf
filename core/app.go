package core

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caasmo/phtunnel/blocklist"
	"github.com/caasmo/phtunnel/cache"
	"github.com/caasmo/phtunnel/config"
	"github.com/caasmo/phtunnel/notify"
	"github.com/caasmo/phtunnel/router"
	"github.com/caasmo/phtunnel/topk"
)

// App is the application wide context.
// The blocklist store and the other long lived objects live here.
//
// All handlers and middleware have App as receiver, so they share one
// explicitly owned store instead of package level state.
type App struct {
	store          *blocklist.Store
	router         router.Router
	cache          cache.Cache[string, blocklist.Decision] // memoized decisions, keyed by index generation
	configProvider *config.Provider
	logger         *slog.Logger
	notifier       notify.Notifier
	forwarder      *Forwarder
	sketch         *topk.Sketch
	decisions      *prometheus.CounterVec
	registry       *prometheus.Registry // served by MetricsHandler
	startTime      time.Time
}

// Router returns the application's router instance
func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) Store() *blocklist.Store {
	return a.store
}

func (a *App) SetStore(s *blocklist.Store) {
	a.store = s
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *App) SetCache(c cache.Cache[string, blocklist.Decision]) {
	a.cache = c
}

func (a *App) Cache() cache.Cache[string, blocklist.Decision] {
	return a.cache
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) SetConfigProvider(provider *config.Provider) {
	a.configProvider = provider
}

func (a *App) Notifier() notify.Notifier {
	return a.notifier
}

func (a *App) SetNotifier(n notify.Notifier) {
	a.notifier = n
}

func (a *App) Forwarder() *Forwarder {
	return a.forwarder
}

func (a *App) SetForwarder(f *Forwarder) {
	a.forwarder = f
}

func (a *App) Sketch() *topk.Sketch {
	return a.sketch
}

func (a *App) SetSketch(s *topk.Sketch) {
	a.sketch = s
}

// SetDecisionCounter sets the counter incremented once per proxied request,
// labeled by the matching rule.
func (a *App) SetDecisionCounter(c *prometheus.CounterVec) {
	a.decisions = c
}

func (a *App) MetricsRegistry() *prometheus.Registry {
	return a.registry
}

// Uptime returns the time elapsed since the App was created.
func (a *App) Uptime() time.Duration {
	return time.Since(a.startTime)
}
