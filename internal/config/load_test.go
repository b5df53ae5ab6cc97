package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "inkpress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MinimalConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: Test Blog\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Test Blog", cfg.Site.Title)
	require.Equal(t, "en", cfg.Site.Language)
	require.Equal(t, "./content", cfg.Content.Directory)
	require.Equal(t, "./public", cfg.Output.Directory)
	require.Equal(t, 4, cfg.Build.Concurrency)
	require.Nil(t, cfg.Daemon)
}

func TestLoad_MissingTitle_Fails(t *testing.T) {
	path := writeConfig(t, "site:\n  author: Someone\n")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "site.title")
}

func TestLoad_MissingFile_Fails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesWinOverFile(t *testing.T) {
	path := writeConfig(t, "site:\n  title: File Title\n")
	t.Setenv("INKPRESS_SITE_TITLE", "Env Title")
	t.Setenv("INKPRESS_ANALYTICS_ID", "UA-12345")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Env Title", cfg.Site.Title)
	require.Equal(t, "UA-12345", cfg.Site.AnalyticsID)
}

func TestLoad_DaemonDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: T\ndaemon: {}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Daemon)
	require.Equal(t, ":8080", cfg.Daemon.Listen)
	require.Equal(t, time.Hour, cfg.Daemon.RebuildEvery)
	require.Equal(t, "./daemon-data", cfg.Daemon.DataDir)
}

func TestValidate_NotifyEnabledWithoutURL_Fails(t *testing.T) {
	cfg := Config{
		Site:   SiteConfig{Title: "T"},
		Daemon: &DaemonConfig{Notify: &NotifyConfig{Enabled: true}},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "nats_url")
}

func TestValidate_SameContentAndOutputDir_Fails(t *testing.T) {
	cfg := Config{Site: SiteConfig{Title: "T"}}
	cfg.Content.Directory = "./x"
	cfg.Output.Directory = "./x"
	cfg.ApplyDefaults()

	require.Error(t, cfg.Validate())
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkpress.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.Site.Title)

	// Second init without force refuses to overwrite.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}
