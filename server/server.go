package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/caasmo/phtunnel/config"
)

// Daemon is a long running component started with the server and stopped
// during graceful shutdown, e.g. the blocklist file watcher.
type Daemon interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	logger         *slog.Logger
	reloadFunc     func() error

	daemonsMu sync.Mutex
	daemons   []Daemon

	// exitFunc terminates the process; tests replace it.
	exitFunc func(code int)
}

func NewServer(provider *config.Provider, handler http.Handler, logger *slog.Logger, reloadFunc func() error) *Server {
	return &Server{
		configProvider: provider,
		handler:        handler,
		logger:         logger,
		reloadFunc:     reloadFunc,
		exitFunc:       os.Exit,
	}
}

// AddDaemon registers d to be started after the listener and stopped on
// shutdown. Daemons start in registration order.
func (s *Server) AddDaemon(d Daemon) {
	s.daemonsMu.Lock()
	defer s.daemonsMu.Unlock()
	s.daemons = append(s.daemons, d)
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, or until the listener fails,
// then shuts the HTTP server and every daemon down within the configured
// graceful timeout. SIGHUP calls the reload function and keeps serving.
func (s *Server) Run() {
	cfg := s.configProvider.Get().Server

	s.logger.Info("Server configuration",
		"addr", cfg.Addr,
		"tls", cfg.TLSEnabled(),
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	// Signals are registered before anything starts so that a SIGHUP sent
	// during startup is not lost.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		s.logger.Error("Failed to listen", "addr", cfg.Addr, "err", err)
		s.exitFunc(1)
		return
	}

	serverError := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSEnabled() {
			s.logger.Info("Starting HTTPS server", "addr", ln.Addr().String())
			err = srv.ServeTLS(ln, cfg.CertFile, cfg.KeyFile)
		} else {
			s.logger.Info("Starting HTTP server", "addr", ln.Addr().String())
			err = srv.Serve(ln)
		}
		if !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Serve error", "err", err)
			serverError <- err
		}
	}()

	started, err := s.startDaemons()
	if err != nil {
		s.logger.Error("Daemon startup failed - shutting down", "err", err)
		s.shutdown(srv, started)
		s.exitFunc(1)
		return
	}

	exitCode := 0
loop:
	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				s.logger.Info("Received SIGHUP - reloading configuration")
				if err := s.reloadFunc(); err != nil {
					s.logger.Error("Reload failed, keeping current configuration", "err", err)
				}
				continue
			}
			s.logger.Info("Received shutdown signal - gracefully shutting down", "signal", sig.String())
			break loop
		case err := <-serverError:
			s.logger.Error("Server error - initiating shutdown", "err", err)
			exitCode = 1
			break loop
		}
	}

	if err := s.shutdown(srv, started); err != nil {
		exitCode = 1
	}
	if exitCode == 0 {
		s.logger.Info("All systems stopped gracefully")
	}
	s.exitFunc(exitCode)
}

// startDaemons starts the registered daemons in order and returns the ones
// that started. It stops at the first failure.
func (s *Server) startDaemons() ([]Daemon, error) {
	s.daemonsMu.Lock()
	daemons := append([]Daemon(nil), s.daemons...)
	s.daemonsMu.Unlock()

	started := make([]Daemon, 0, len(daemons))
	for _, d := range daemons {
		s.logger.Info("Starting daemon", "daemon", d.Name())
		if err := d.Start(); err != nil {
			return started, fmt.Errorf("daemon %s: %w", d.Name(), err)
		}
		started = append(started, d)
	}
	return started, nil
}

func (s *Server) shutdown(srv *http.Server, daemons []Daemon) error {
	timeout := s.configProvider.Get().Server.ShutdownGracefulTimeout.Duration
	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)

	shutdownGroup.Go(func() error {
		s.logger.Info("Shutting down HTTP server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		s.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	for _, d := range daemons {
		d := d
		shutdownGroup.Go(func() error {
			s.logger.Info("Stopping daemon", "daemon", d.Name())
			if err := d.Stop(gracefulCtx); err != nil {
				s.logger.Error("Daemon shutdown error", "daemon", d.Name(), "err", err)
				return err
			}
			s.logger.Info("Daemon stopped gracefully", "daemon", d.Name())
			return nil
		})
	}

	if err := shutdownGroup.Wait(); err != nil {
		s.logger.Error("Error during shutdown", "err", err)
		return err
	}
	return nil
}
