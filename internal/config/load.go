package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads, overlays, defaults and validates the configuration at path.
//
// Environment variables win over file values; a .env/.env.local file is
// loaded first (best effort, without overriding the process environment) so
// secrets like analytics identifiers can stay out of the YAML file.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads the first available .env file. Existing process
// environment variables are never overwritten.
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", p)
			return
		}
	}
}

// applyEnvOverrides maps INKPRESS_* environment variables onto config fields.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("INKPRESS_SITE_TITLE"); v != "" {
		c.Site.Title = v
	}
	if v := os.Getenv("INKPRESS_SITE_AUTHOR"); v != "" {
		c.Site.Author = v
	}
	if v := os.Getenv("INKPRESS_BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv("INKPRESS_ANALYTICS_ID"); v != "" {
		c.Site.AnalyticsID = v
	}
	if v := os.Getenv("INKPRESS_CONTENT_DIR"); v != "" {
		c.Content.Directory = v
	}
	if v := os.Getenv("INKPRESS_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("INKPRESS_NATS_URL"); v != "" {
		if c.Daemon == nil {
			c.Daemon = &DaemonConfig{}
		}
		if c.Daemon.Notify == nil {
			c.Daemon.Notify = &NotifyConfig{Enabled: true}
		}
		c.Daemon.Notify.NATSURL = v
	}
}

// ApplyDefaults fills zero values with defaults. Safe to call repeatedly.
func (c *Config) ApplyDefaults() {
	if c.Site.Language == "" {
		c.Site.Language = "en"
	}
	if c.Content.Directory == "" {
		c.Content.Directory = "./content"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./public"
	}
	if c.Build.Concurrency < 1 {
		c.Build.Concurrency = 4
	}
	if c.Daemon != nil {
		if c.Daemon.Listen == "" {
			c.Daemon.Listen = ":8080"
		}
		if c.Daemon.RebuildEvery <= 0 {
			c.Daemon.RebuildEvery = time.Hour
		}
		if c.Daemon.DataDir == "" {
			c.Daemon.DataDir = "./daemon-data"
		}
		if c.Daemon.Notify != nil && c.Daemon.Notify.Subject == "" {
			c.Daemon.Notify.Subject = "inkpress.builds"
		}
	}
}

// Validate rejects configurations that cannot produce a correct build.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return fmt.Errorf("config: site.title is required")
	}
	if c.Content.Directory == c.Output.Directory {
		return fmt.Errorf("config: content.directory and output.directory must differ (%s)", c.Content.Directory)
	}
	if c.Daemon != nil && c.Daemon.Notify != nil && c.Daemon.Notify.Enabled && c.Daemon.Notify.NATSURL == "" {
		return fmt.Errorf("config: daemon.notify.nats_url is required when notifications are enabled")
	}
	return nil
}
