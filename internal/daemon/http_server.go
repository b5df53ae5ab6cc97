package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/inkpress/internal/metrics"
)

// startHTTPServer serves the built site plus operational endpoints:
// /healthz (status JSON), /metrics (Prometheus), /api/builds (recent history).
func (d *Daemon) startHTTPServer(ctx context.Context) (<-chan error, error) {
	cfg := d.Config()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", d.handleHealth)
	mux.Handle("/metrics", metrics.HTTPHandler(d.registry))
	mux.HandleFunc("/api/builds", d.handleBuilds)
	// The site itself. The output directory is resolved per request so a
	// config reload takes effect without restarting the server.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.FileServer(http.Dir(d.Config().Output.Directory)).ServeHTTP(w, r)
	})

	server := &http.Server{
		Addr:              cfg.Daemon.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		slog.Info("Daemon HTTP server listening", "addr", cfg.Daemon.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
			return
		}
		done <- nil
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", "error", err)
		}
	}()

	return done, nil
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	type healthResponse struct {
		Status    string `json:"status"`
		UptimeSec int64  `json:"uptime_seconds"`
		LastBuild any    `json:"last_build,omitempty"`
	}

	resp := healthResponse{
		Status:    "ok",
		UptimeSec: int64(time.Since(d.startTime).Seconds()),
	}
	if last := d.lastBuildRecord(); last != nil {
		resp.LastBuild = map[string]any{
			"build_id": last.BuildID,
			"outcome":  last.Outcome,
			"pages":    last.Pages,
			"failures": last.Failures,
			"finished": last.End,
		}
		if last.Outcome == "failed" {
			resp.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (d *Daemon) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if d.store == nil {
		http.Error(w, "build history unavailable", http.StatusServiceUnavailable)
		return
	}
	records, err := d.store.Recent(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}
