package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init writes a starter configuration file to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Site: SiteConfig{
			Title:    "My Blog",
			Author:   "Jane Doe",
			BaseURL:  "https://example.com",
			Language: "en",
		},
		Theme: ThemeConfig{
			RTL:         false,
			Inverted:    false,
			Stylesheets: []string{"css/custom.css"},
		},
		Content: ContentConfig{Directory: "./content"},
		Output:  OutputConfig{Directory: "./public", Clean: true},
		Build:   BuildConfig{Concurrency: 4},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", configPath, err)
	}
	return nil
}
