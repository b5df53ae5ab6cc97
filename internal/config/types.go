package config

import "time"

// Config is the root site configuration loaded from inkpress.yaml.
//
// It is initialized once at process start and treated as read-only for the
// duration of a build. Daemon mode may swap the whole Config on reload, but
// never mutates a Config in place.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Theme   ThemeConfig   `yaml:"theme,omitempty"`
	Content ContentConfig `yaml:"content,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Build   BuildConfig   `yaml:"build,omitempty"`
	Daemon  *DaemonConfig `yaml:"daemon,omitempty"`
}

// SiteConfig holds site-wide display parameters substituted into the page shell.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Language    string `yaml:"language,omitempty"` // BCP 47 tag, defaults to "en"
	AnalyticsID string `yaml:"analytics_id,omitempty"`
}

// ThemeConfig holds boolean presentation toggles and extra stylesheets.
//
// RTL and Inverted each control the inclusion of one stylesheet link in the
// page shell. Stylesheets lists additional asset paths (relative to the
// content directory) copied into the output tree and linked in order.
type ThemeConfig struct {
	RTL         bool     `yaml:"rtl,omitempty"`
	Inverted    bool     `yaml:"inverted,omitempty"`
	Stylesheets []string `yaml:"stylesheets,omitempty"`
}

// ContentConfig locates the content tree.
type ContentConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// OutputConfig controls the output tree.
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
	// Clean removes the output directory before finalizing a build. The build
	// itself always renders into a staging directory, so Clean only affects
	// leftover files from earlier runs.
	Clean bool `yaml:"clean,omitempty"`
}

// BuildConfig holds build performance tuning knobs. Zero values trigger
// sensible defaults, so existing configurations keep working as fields are
// added.
type BuildConfig struct {
	// Concurrency caps the number of documents rendered in parallel.
	// Defaults to 4; values <1 are coerced to 1.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// DaemonConfig configures the long-running rebuild daemon.
type DaemonConfig struct {
	Listen       string        `yaml:"listen,omitempty"`        // HTTP listen address, defaults to ":8080"
	RebuildEvery time.Duration `yaml:"rebuild_every,omitempty"` // periodic rebuild interval, defaults to 1h
	DataDir      string        `yaml:"data_dir,omitempty"`      // build history database location
	Notify       *NotifyConfig `yaml:"notify,omitempty"`
}

// NotifyConfig configures optional NATS build notifications.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}
