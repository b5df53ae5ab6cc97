package daemon

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/inkpress/internal/config"
	"git.home.luguber.info/inful/inkpress/internal/history"
)

func daemonConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{Daemon: &config.DaemonConfig{}}
	cfg.Site.Title = "Test Site"
	cfg.Content.Directory = t.TempDir()
	cfg.Output.Directory = t.TempDir()
	cfg.ApplyDefaults()
	return cfg
}

func TestNew_RequiresDaemonSection(t *testing.T) {
	cfg := daemonConfig(t)
	cfg.Daemon = nil

	_, err := New(cfg, "")
	require.Error(t, err)
}

func TestHandleHealth_ReportsLastBuild(t *testing.T) {
	d, err := New(daemonConfig(t), "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	d.handleHealth(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])
	require.NotContains(t, resp, "last_build")

	d.lastMu.Lock()
	d.lastBuild = &history.Record{BuildID: "abc", Outcome: "failed", End: time.Now()}
	d.lastMu.Unlock()

	rec = httptest.NewRecorder()
	d.handleHealth(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "degraded", resp["status"])
	last, ok := resp["last_build"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "abc", last["build_id"])
}

func TestHandleBuilds_UnavailableWithoutStore(t *testing.T) {
	d, err := New(daemonConfig(t), "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	d.handleBuilds(rec, httptest.NewRequest("GET", "/api/builds", nil))
	require.Equal(t, 503, rec.Code)
}

func TestValidateConfigChange_RejectsDroppedDaemonSection(t *testing.T) {
	d, err := New(daemonConfig(t), "")
	require.NoError(t, err)
	cw := &ConfigWatcher{daemon: d}

	bad := daemonConfig(t)
	bad.Daemon = nil
	require.Error(t, cw.validateConfigChange(bad))

	good := daemonConfig(t)
	require.NoError(t, cw.validateConfigChange(good))
}

func TestScheduler_RunsPeriodicBuild(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	_, err = s.SchedulePeriodicBuild(10*time.Millisecond, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	s.Start(t.Context())
	defer func() { require.NoError(t, s.Stop(t.Context())) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic build never ran")
	}
}
