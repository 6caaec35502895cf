// Package phtunnel assembles the PostHog tunnel: it loads the configuration,
// opens the blocklist, builds the core App with its routes and the prerouter
// chain, and returns the Server that runs them.
package phtunnel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/caasmo/phtunnel/blocklist"
	"github.com/caasmo/phtunnel/cache/ristretto"
	"github.com/caasmo/phtunnel/config"
	"github.com/caasmo/phtunnel/core"
	"github.com/caasmo/phtunnel/core/prerouter"
	"github.com/caasmo/phtunnel/notify/discord"
	"github.com/caasmo/phtunnel/router"
	"github.com/caasmo/phtunnel/server"
	"github.com/caasmo/phtunnel/topk"
)

// New loads the configuration from configPath (an empty path uses defaults
// and the environment) and creates the App and its Server. Options override
// the defaults: an httprouter router and a logger chosen by environment.
func New(configPath string, opts ...core.Option) (*core.App, *server.Server, error) {
	ctx := context.Background()

	cfg, err := config.Load(ctx, configPath, nil)
	if err != nil {
		slog.Error("failed to load initial config", "error", err)
		return nil, nil, err
	}
	configProvider := config.NewProvider(cfg)

	store, err := blocklist.NewStore(blocklist.NewFilePersister(cfg.Blocklist.Path))
	if err != nil {
		slog.Error("failed to load blocklist", "path", cfg.Blocklist.Path, "error", err)
		return nil, nil, err
	}

	allOpts := []core.Option{
		core.WithConfigProvider(configProvider),
		core.WithStore(store),
		WithRouterHttprouter(),
		defaultLogger(cfg),
	}
	if cfg.Cache.Activated {
		c, err := ristretto.New[blocklist.Decision](cfg.Cache.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create decision cache: %w", err)
		}
		allOpts = append(allOpts, core.WithCache(c))
	}
	if cfg.Stats.Activated {
		allOpts = append(allOpts, core.WithSketch(topk.New(topk.SketchParams{
			K:          cfg.Stats.K,
			WindowSize: cfg.Stats.WindowSize,
			Width:      cfg.Stats.Width,
			Depth:      cfg.Stats.Depth,
			TickSize:   cfg.Stats.TickSize,
		})))
	}
	allOpts = append(allOpts, opts...)

	app, err := core.NewApp(allOpts...)
	if err != nil {
		slog.Error("failed to initialize core app", "error", err)
		return nil, nil, err
	}
	logger := app.Logger()

	if cfg.Notifier.Discord.Activated {
		dn, err := discord.New(cfg.Notifier.Discord, logger)
		if err != nil {
			logger.Error("failed to create discord notifier", "error", err)
			return nil, nil, err
		}
		app.SetNotifier(dn)
	}

	route(cfg, app)

	handler, err := preRouterChain(app)
	if err != nil {
		logger.Error("failed to build prerouter chain", "error", err)
		return nil, nil, err
	}

	srv := server.NewServer(configProvider, handler, logger, reloadFunc(app, configProvider))
	if cfg.Blocklist.Watch {
		srv.AddDaemon(blocklist.NewWatcher(store, cfg.Blocklist.Path, logger))
	}

	logStartup(app)
	return app, srv, nil
}

// preRouterChain wraps the router with the middlewares that run for every
// request, matched route or not. The recorder comes first so that request
// logging and metrics see the final status.
func preRouterChain(app *core.App) (http.Handler, error) {
	metrics, err := prerouter.NewMetrics(app)
	if err != nil {
		return nil, err
	}

	return router.NewChain(app.Router()).WithMiddleware(
		prerouter.NewRecorder(app).Execute,
		prerouter.NewRequestLog(app).Execute,
		metrics.Execute,
		prerouter.NewCors(app).Execute,
		prerouter.NewTLSHeaderSTS().Execute,
	).Handler(), nil
}

// reloadFunc is run on SIGHUP. It rereads the configuration file and the
// blocklist document; a failure in either keeps the running state.
func reloadFunc(app *core.App, provider *config.Provider) func() error {
	return func() error {
		if err := config.Reload(context.Background(), provider, nil, app.Logger()); err != nil {
			return err
		}
		if err := app.Store().Reload(); err != nil {
			app.Logger().Error("Reload: failed to reload blocklist", "error", err)
			return fmt.Errorf("reload blocklist: %w", err)
		}
		app.Logger().Info("Reload: blocklist reloaded", "identifiers", app.Store().Index().Len())
		return nil
	}
}

func defaultLogger(cfg *config.Config) core.Option {
	opts := loggerOptions(cfg.Log.Level.Level)
	if cfg.Env == config.EnvProduction {
		return WithPhusLogger(opts)
	}
	return WithTextLogger(opts)
}

func logStartup(app *core.App) {
	cfg := app.Config()
	idx := app.Store().Index()
	app.Logger().Info("PostHog tunnel configured",
		"env", cfg.Env,
		"addr", cfg.Server.Addr,
		"tls", cfg.Server.TLSEnabled(),
		"ingest_host", cfg.Upstream.IngestHost,
		"assets_host", cfg.Upstream.AssetsHost,
		"blocklist", cfg.Blocklist.Path,
		"blocked_identifiers", idx.Len(),
		"global_blocked_domains", len(idx.Data().GlobalBlockedDomains),
		"cache", cfg.Cache.Activated,
		"stats", cfg.Stats.Activated,
	)
}
