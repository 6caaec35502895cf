package blocklist

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 250 * time.Millisecond

// Watcher reloads the store when the blocklist file is changed on disk by
// something other than the admin API, e.g. an operator editing it by hand.
// The parent directory is watched because saves replace the file by rename.
type Watcher struct {
	store    *Store
	path     string
	logger   *slog.Logger
	debounce time.Duration

	fw   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(store *Store, path string, logger *slog.Logger) *Watcher {
	return &Watcher{
		store:    store,
		path:     path,
		logger:   logger,
		debounce: defaultWatchDebounce,
	}
}

func (w *Watcher) Name() string {
	return "BlocklistWatcher"
}

func (w *Watcher) Start() error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("blocklist watcher: resolve %s: %w", w.path, err)
	}
	w.path = abs

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("blocklist watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return fmt.Errorf("blocklist watcher: watch %s: %w", filepath.Dir(abs), err)
	}

	w.fw = fw
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.loop()

	w.logger.Info("blocklist watcher started", "path", abs)
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var fire <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				fire = time.After(w.debounce)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("blocklist watcher error", "error", err)
		case <-fire:
			fire = nil
			if err := w.store.Reload(); err != nil {
				w.logger.Error("blocklist reload failed, keeping previous state", "path", w.path, "error", err)
				continue
			}
			idx := w.store.Index()
			w.logger.Info("blocklist reloaded from disk",
				"identifiers", idx.Len(),
				"global_domains", len(idx.Data().GlobalBlockedDomains),
				"generation", idx.Generation())
		}
	}
}

func (w *Watcher) Stop(ctx context.Context) error {
	if w.fw == nil {
		return nil
	}
	close(w.done)
	err := w.fw.Close()

	stopped := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}
