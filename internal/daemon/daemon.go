// Package daemon runs inkpress as a long-lived service: periodic rebuilds,
// config reload, an HTTP server for the site plus health and metrics, build
// history, and optional NATS notifications.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/inkpress/internal/build"
	"git.home.luguber.info/inful/inkpress/internal/config"
	"git.home.luguber.info/inful/inkpress/internal/history"
	"git.home.luguber.info/inful/inkpress/internal/metrics"
	"git.home.luguber.info/inful/inkpress/internal/notify"
)

// Daemon coordinates scheduled site rebuilds and the daemon HTTP server.
type Daemon struct {
	mu         sync.RWMutex
	cfg        *config.Config
	configPath string

	registry *prom.Registry
	recorder *metrics.PrometheusRecorder
	store    *history.Store
	notifier *notify.Notifier // nil when notifications are disabled

	scheduler *Scheduler
	watcher   *ConfigWatcher

	buildMu   sync.Mutex // serializes builds; periodic and reload triggers may race
	startTime time.Time

	lastMu    sync.RWMutex
	lastBuild *history.Record
}

// New creates a daemon for the given configuration. configPath enables
// config-file watching; pass "" to disable it.
func New(cfg *config.Config, configPath string) (*Daemon, error) {
	if cfg.Daemon == nil {
		return nil, fmt.Errorf("daemon mode requires a daemon section in the configuration")
	}

	registry := prom.NewRegistry()
	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		registry:   registry,
		recorder:   metrics.NewPrometheusRecorder(registry),
		startTime:  time.Now(),
	}
	return d, nil
}

// Config returns the current configuration snapshot.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// ReloadConfig swaps in a new configuration and triggers a rebuild so the
// output reflects it.
func (d *Daemon) ReloadConfig(ctx context.Context, newCfg *config.Config) error {
	d.mu.Lock()
	d.cfg = newCfg
	d.mu.Unlock()

	d.runBuild(ctx, "reload")
	return nil
}

// Run starts all daemon components and blocks until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.Config()

	if err := os.MkdirAll(cfg.Daemon.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := history.Open(filepath.Join(cfg.Daemon.DataDir, "history.db"))
	if err != nil {
		return fmt.Errorf("open build history: %w", err)
	}
	d.store = store
	defer func() { _ = store.Close() }()

	if nc := cfg.Daemon.Notify; nc != nil && nc.Enabled {
		notifier, err := notify.NewNotifier(nc)
		if err != nil {
			// Notifications are best effort; the daemon is useful without them.
			slog.Warn("Build notifications unavailable", "error", err)
		} else {
			d.notifier = notifier
			defer notifier.Close()
		}
	}

	d.scheduler, err = NewScheduler()
	if err != nil {
		return err
	}
	jobID, err := d.scheduler.SchedulePeriodicBuild(cfg.Daemon.RebuildEvery, func() {
		d.runBuild(ctx, "scheduled")
	})
	if err != nil {
		return err
	}
	slog.Info("Scheduled periodic rebuild", "job_id", jobID, "interval", cfg.Daemon.RebuildEvery)
	d.scheduler.Start(ctx)
	defer func() {
		if err := d.scheduler.Stop(ctx); err != nil {
			slog.Warn("Scheduler shutdown error", "error", err)
		}
	}()

	if d.configPath != "" {
		d.watcher, err = NewConfigWatcher(d.configPath, d)
		if err != nil {
			return err
		}
		if err := d.watcher.Start(ctx); err != nil {
			return err
		}
		defer d.watcher.Stop()
	}

	httpDone, err := d.startHTTPServer(ctx)
	if err != nil {
		return err
	}

	// Build once at startup so the HTTP server has something to serve.
	d.runBuild(ctx, "startup")

	select {
	case <-ctx.Done():
		slog.Info("Daemon shutting down")
	case err := <-httpDone:
		if err != nil {
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
	return nil
}

// runBuild executes one full site build, records it, and notifies.
func (d *Daemon) runBuild(ctx context.Context, trigger string) {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	buildID := uuid.NewString()
	cfg := d.Config()
	slog.Info("Daemon build starting", "build_id", buildID, "trigger", trigger)

	report, err := build.New(cfg).SetRecorder(d.recorder).Build(ctx)
	if err != nil {
		slog.Error("Daemon build failed", "build_id", buildID, "error", err)
	}

	record := history.Record{
		BuildID:  buildID,
		Start:    report.Start,
		End:      report.End,
		Outcome:  string(report.Outcome),
		Pages:    report.RenderedPages,
		Failures: len(report.Failures),
		Trigger:  trigger,
	}
	if d.store != nil {
		if err := d.store.Append(ctx, record); err != nil {
			slog.Warn("Failed to record build history", "build_id", buildID, "error", err)
		}
	}
	d.lastMu.Lock()
	d.lastBuild = &record
	d.lastMu.Unlock()

	if d.notifier != nil {
		event := notify.BuildEvent{
			BuildID:  buildID,
			Outcome:  string(report.Outcome),
			Pages:    report.RenderedPages,
			Failures: len(report.Failures),
			Finished: report.End,
		}
		if err := d.notifier.Publish(event); err != nil {
			slog.Warn("Failed to publish build event", "build_id", buildID, "error", err)
		}
	}
}

func (d *Daemon) lastBuildRecord() *history.Record {
	d.lastMu.RLock()
	defer d.lastMu.RUnlock()
	return d.lastBuild
}
