package core

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caasmo/phtunnel/blocklist"
	"github.com/caasmo/phtunnel/cache"
	"github.com/caasmo/phtunnel/config"
	"github.com/caasmo/phtunnel/notify"
	"github.com/caasmo/phtunnel/router"
	"github.com/caasmo/phtunnel/topk"
)

type Option func(*App)

// NewApp builds an App from options. The store, router, config provider
// and logger are required. Missing optional parts get defaults: a
// NilNotifier, a forwarder on http.DefaultClient and an empty metrics
// registry. The decision counter is registered on that registry.
func NewApp(opts ...Option) (*App, error) {
	a := &App{startTime: time.Now()}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		return nil, fmt.Errorf("store is required but was not provided (use WithStore)")
	}
	if a.router == nil {
		return nil, fmt.Errorf("router is required but was not provided (use WithRouter)")
	}
	if a.configProvider == nil {
		return nil, fmt.Errorf("config provider is required but was not provided (use WithConfigProvider)")
	}
	if a.logger == nil {
		return nil, fmt.Errorf("logger is required but was not provided (use WithLogger)")
	}
	if a.notifier == nil {
		a.notifier = notify.NewNilNotifier()
	}
	if a.forwarder == nil {
		a.forwarder = NewForwarder(http.DefaultClient)
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	if a.decisions == nil {
		a.decisions = NewDecisionCounter()
	}
	if err := a.registry.Register(a.decisions); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("failed to register decision counter: %w", err)
		}
	}

	return a, nil
}

// WithStore sets the blocklist store
func WithStore(s *blocklist.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithCache sets the decision cache
func WithCache(c cache.Cache[string, blocklist.Decision]) Option {
	return func(a *App) {
		a.cache = c
	}
}

// WithRouter sets the router implementation
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithForwarder sets the outbound forwarder, mostly to inject an
// http.Client in tests.
func WithForwarder(f *Forwarder) Option {
	return func(a *App) {
		a.forwarder = f
	}
}

func WithSketch(s *topk.Sketch) Option {
	return func(a *App) {
		a.sketch = s
	}
}

func WithDecisionCounter(c *prometheus.CounterVec) Option {
	return func(a *App) {
		a.decisions = c
	}
}

// WithMetricsRegistry sets the registry exposed on the metrics endpoint.
func WithMetricsRegistry(r *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = r
	}
}
