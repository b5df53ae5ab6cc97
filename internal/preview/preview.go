// Package preview serves the output tree locally and rebuilds on content
// changes.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/inkpress/internal/build"
	"git.home.luguber.info/inful/inkpress/internal/config"
)

// debounceDelay coalesces editor save bursts into one rebuild.
const debounceDelay = 300 * time.Millisecond

// Run performs an initial build, serves the output directory over HTTP and
// watches the content tree, rebuilding on every (debounced) change. Each
// rebuild runs the full pipeline; no incremental state is carried over.
func Run(ctx context.Context, cfg *config.Config, addr string) error {
	absContent, err := filepath.Abs(cfg.Content.Directory)
	if err != nil {
		return fmt.Errorf("resolve content dir: %w", err)
	}
	if st, statErr := os.Stat(absContent); statErr != nil || !st.IsDir() {
		return fmt.Errorf("content dir not found or not a directory: %s", absContent)
	}

	if _, err := build.New(cfg).Build(ctx); err != nil {
		// Keep serving whatever the last good build produced; the watcher
		// retries on the next change.
		slog.Error("Initial build failed", "error", err)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: http.FileServer(http.Dir(cfg.Output.Directory)),
	}
	go func() {
		slog.Info("Preview server listening", "addr", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server failed", "error", err)
		}
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := addDirsRecursive(watcher, absContent); err != nil {
		return err
	}

	rebuildReq, trigger := newDebouncer()
	startRebuildWorker(ctx, cfg, rebuildReq)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down preview server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

// newDebouncer returns the rebuild request channel and a trigger that
// schedules a request after debounceDelay, restarting the timer on every call.
func newDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// startRebuildWorker processes rebuild requests one at a time; a request
// arriving mid-build queues exactly one follow-up build.
func startRebuildWorker(ctx context.Context, cfg *config.Config, rebuildReq chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-rebuildReq:
				if !ok {
					return
				}
				slog.Info("Change detected; rebuilding site")
				if report, err := build.New(cfg).Build(ctx); err != nil {
					slog.Warn("Rebuild failed", "error", err)
				} else if report.Failed() {
					slog.Warn("Rebuild completed with document failures", "failures", len(report.Failures))
				}
			}
		}
	}()
}

func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", "path", ev.Name, "op", ev.Op.String())
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}

// shouldIgnoreEvent filters events from hidden, swap and lock files that
// editors emit around saves.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	if base == "Thumbs.db" {
		return true
	}
	return false
}
