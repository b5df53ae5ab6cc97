package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/inkpress/internal/build"
	"git.home.luguber.info/inful/inkpress/internal/config"
	"git.home.luguber.info/inful/inkpress/internal/content"
	"git.home.luguber.info/inful/inkpress/internal/daemon"
	"git.home.luguber.info/inful/inkpress/internal/frontmatter"
	"git.home.luguber.info/inful/inkpress/internal/preview"
	"git.home.luguber.info/inful/inkpress/internal/publish"
	"git.home.luguber.info/inful/inkpress/internal/site"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"inkpress.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Report string `help:"Write a JSON build report to this path"`
	} `cmd:"" help:"Build the site from the content directory"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Check struct{} `cmd:"" help:"Parse and validate content without writing output"`

	Preview struct {
		Addr string `short:"a" help:"Listen address for the preview server" default:"127.0.0.1:3000"`
	} `cmd:"" help:"Serve the site locally and rebuild on content changes"`

	Publish struct {
		Message string `short:"m" help:"Commit message" default:""`
		Author  string `help:"Commit author name"`
		Email   string `help:"Commit author email"`
	} `cmd:"" help:"Commit the built output directory to its git repository"`

	Daemon struct{} `cmd:"" help:"Run as a long-lived service with periodic rebuilds"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		os.Exit(runBuild(cfg, CLI.Build.Report))
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "check":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		os.Exit(runCheck(cfg))
	case "preview":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runPreview(cfg, CLI.Preview.Addr); err != nil {
			slog.Error("Preview failed", "error", err)
			os.Exit(1)
		}
	case "publish":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runPublish(cfg); err != nil {
			slog.Error("Publish failed", "error", err)
			os.Exit(1)
		}
	case "daemon":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runDaemon(cfg); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	}
}

// runBuild executes one batch build and maps the report to an exit code:
// 0 on success, 1 on a fatal error, 2 when the site was written but some
// documents were excluded for parse failures.
func runBuild(cfg *config.Config, reportPath string) int {
	report, err := build.New(cfg).Build(context.Background())

	if reportPath != "" && report != nil {
		if perr := report.Persist(reportPath); perr != nil {
			slog.Warn("Failed to write build report", "path", reportPath, "error", perr)
		}
	}

	if err != nil {
		slog.Error("Build failed", "error", err)
		return 1
	}
	if report.Failed() {
		for _, f := range report.Failures {
			slog.Error("Document excluded", "path", f.SourcePath, "category", f.Category, "reason", f.Message)
		}
		return 2
	}
	return 0
}

// runCheck parses every document and verifies the output mapping without
// touching the output directory.
func runCheck(cfg *config.Config) int {
	sources, warnings, err := content.NewLoader(cfg.Content.Directory).Load()
	if err != nil {
		slog.Error("Content tree unreadable", "error", err)
		return 1
	}
	for _, w := range warnings {
		slog.Warn("Skipping unreadable file", "error", w)
	}

	failures := 0
	drafts := 0
	seen := make(map[string]string) // output path -> first source
	for _, src := range sources {
		meta, _, err := frontmatter.Parse(src.Raw)
		if err != nil {
			slog.Error("Invalid document", "path", src.RelPath, "error", err)
			failures++
			continue
		}
		if meta.Draft {
			drafts++
			continue
		}
		outPath := site.OutputPath(site.Slugify(src.RelPath))
		if first, ok := seen[outPath]; ok {
			slog.Error("Output path collision", "output", outPath, "first", first, "second", src.RelPath)
			failures++
			continue
		}
		seen[outPath] = src.RelPath
	}

	slog.Info("Check completed",
		"documents", len(sources),
		"publishable", len(seen),
		"drafts", drafts,
		"failures", failures)
	if failures > 0 {
		return 2
	}
	return 0
}

func runPreview(cfg *config.Config, addr string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return preview.Run(ctx, cfg, addr)
}

func runPublish(cfg *config.Config) error {
	result, err := publish.Publish(publish.Options{
		Dir:     cfg.Output.Directory,
		Message: CLI.Publish.Message,
		Author:  CLI.Publish.Author,
		Email:   CLI.Publish.Email,
	})
	if errors.Is(err, publish.ErrNothingToPublish) {
		slog.Info("Nothing to publish; output is unchanged")
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("Published", "commit", result.CommitHash, "files", result.Files)
	return nil
}

func runDaemon(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The daemon section is optional in the file; running the daemon command
	// implies it.
	if cfg.Daemon == nil {
		cfg.Daemon = &config.DaemonConfig{}
		cfg.ApplyDefaults()
	}

	d, err := daemon.New(cfg, CLI.Config)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	slog.Info("Starting daemon", "listen", cfg.Daemon.Listen)
	return d.Run(ctx)
}
