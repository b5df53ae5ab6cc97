// Package build orchestrates the content pipeline over the whole content
// tree: load, parse, plan, render, compose, write.
package build

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"git.home.luguber.info/inful/inkpress/internal/config"
	"git.home.luguber.info/inful/inkpress/internal/content"
	"git.home.luguber.info/inful/inkpress/internal/frontmatter"
	"git.home.luguber.info/inful/inkpress/internal/markdown"
	"git.home.luguber.info/inful/inkpress/internal/metrics"
	"git.home.luguber.info/inful/inkpress/internal/site"
)

// Builder runs the one-shot batch build.
type Builder struct {
	cfg      *config.Config
	recorder metrics.Recorder
}

// New creates a builder for the given configuration.
func New(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg, recorder: metrics.NoopRecorder{}}
}

// SetRecorder injects a metrics recorder (optional). Returns the builder for
// chaining.
func (b *Builder) SetRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		b.recorder = metrics.NoopRecorder{}
		return b
	}
	b.recorder = r
	return b
}

// buildState carries mutable state across stages of one build.
type buildState struct {
	cfg      *config.Config
	report   *Report
	recorder metrics.Recorder

	renderer *markdown.Renderer
	composer *site.Composer

	sources []content.Source
	docs    []content.Document // parsed, non-draft
	plans   []planned

	stagingDir string
	outputDir  string
}

// Build runs the full pipeline and returns the report.
//
// Pages are rendered into a staging directory and only swapped into the
// output directory after every stage succeeds, so a failed build never leaves
// a half-written output tree. Per-document parse failures do not abort the
// build; they are collected in the report and the caller maps them to a
// non-zero exit status.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	report := newReport()
	bs := &buildState{
		cfg:       b.cfg,
		report:    report,
		recorder:  b.recorder,
		outputDir: filepath.Clean(b.cfg.Output.Directory),
	}

	slog.Info("Starting site build",
		"content", b.cfg.Content.Directory,
		"output", bs.outputDir)

	stages := []namedStage{
		{StagePrepare, stagePrepare},
		{StageLoad, stageLoad},
		{StageParse, stageParse},
		{StagePlan, stagePlan},
		{StageRender, stageRender},
		{StageAssets, stageAssets},
		{StageFinalize, stageFinalize},
	}

	if err := runStages(ctx, bs, stages); err != nil {
		bs.abortStaging()
		var se *StageError
		if seErr, ok := err.(*StageError); ok {
			se = seErr
		}
		if se != nil && se.Kind == StageErrorCanceled {
			report.Outcome = OutcomeCanceled
		} else {
			report.Outcome = OutcomeFailed
		}
		report.finish()
		b.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
		b.recorder.IncBuildOutcome(string(report.Outcome))
		return report, err
	}

	report.finish()
	b.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	b.recorder.IncBuildOutcome(string(report.Outcome))

	slog.Info("Site build completed",
		"output", bs.outputDir,
		"pages", report.RenderedPages,
		"drafts_skipped", report.SkippedDrafts,
		"failures", len(report.Failures),
		"outcome", report.Outcome)
	return report, nil
}

func stagePrepare(ctx context.Context, bs *buildState) error {
	composer, err := site.NewComposer(bs.cfg)
	if err != nil {
		return newFatalStageError(StagePrepare, WrapError(err, CategoryTemplate, SeverityFatal, "page shell does not parse"))
	}
	bs.composer = composer
	bs.renderer = markdown.NewRenderer()

	parent := filepath.Dir(bs.outputDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return newFatalStageError(StagePrepare, WrapError(err, CategoryIO, SeverityFatal, "create output parent directory"))
	}
	staging, err := os.MkdirTemp(parent, ".inkpress-staging-*")
	if err != nil {
		return newFatalStageError(StagePrepare, WrapError(err, CategoryIO, SeverityFatal, "create staging directory"))
	}
	bs.stagingDir = staging
	return nil
}

func stageLoad(ctx context.Context, bs *buildState) error {
	sources, warnings, err := content.NewLoader(bs.cfg.Content.Directory).Load()
	if err != nil {
		return newFatalStageError(StageLoad, WrapError(err, CategoryIO, SeverityFatal, "content tree unreadable"))
	}
	for _, w := range warnings {
		bs.report.Warnings = append(bs.report.Warnings, w.Error())
	}
	bs.sources = sources
	bs.report.Documents = len(sources)
	return nil
}

func stageParse(ctx context.Context, bs *buildState) error {
	for _, src := range bs.sources {
		meta, body, err := frontmatter.Parse(src.Raw)
		if err != nil {
			perr := WrapError(err, CategoryParse, SeverityError, "invalid frontmatter").WithPaths(src.RelPath)
			bs.report.AddFailure(src.RelPath, CategoryParse, err)
			slog.Error("Document excluded from output", "path", src.RelPath, "error", perr)
			continue
		}
		if meta.Draft {
			bs.report.SkippedDrafts++
			slog.Debug("Skipping draft", "path", src.RelPath)
			continue
		}
		bs.docs = append(bs.docs, content.Document{
			SourcePath: src.RelPath,
			Slug:       site.Slugify(src.RelPath),
			Title:      meta.Title,
			Date:       meta.Date,
			Draft:      false,
			Body:       body,
		})
	}
	return nil
}

func stagePlan(ctx context.Context, bs *buildState) error {
	plans, err := planOutputs(bs.docs)
	if err != nil {
		return newFatalStageError(StagePlan, err)
	}
	bs.plans = plans
	return nil
}

// stageRender runs the per-document pipeline (render markdown, compose shell,
// write page) over a bounded worker pool. Documents are independent; the only
// shared state is the report counter, updated atomically.
func stageRender(ctx context.Context, bs *buildState) error {
	workers := bs.cfg.Build.Concurrency
	if workers > len(bs.plans) {
		workers = len(bs.plans)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan planned)
	var (
		wg       sync.WaitGroup
		rendered atomic.Int64
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				// Keep draining after a failure so the feeder never blocks.
				if failed() {
					continue
				}
				if err := renderOne(bs, p); err != nil {
					setErr(err)
					continue
				}
				rendered.Add(1)
			}
		}()
	}

feed:
	for _, p := range bs.plans {
		select {
		case <-ctx.Done():
			setErr(newCanceledStageError(StageRender, ctx.Err()))
			break feed
		case jobs <- p:
		}
	}
	close(jobs)
	wg.Wait()

	bs.report.RenderedPages = int(rendered.Load())
	bs.recorder.AddPagesRendered(bs.report.RenderedPages)
	if firstErr != nil {
		if se, ok := firstErr.(*StageError); ok {
			return se
		}
		return newFatalStageError(StageRender, firstErr)
	}
	return nil
}

func renderOne(bs *buildState, p planned) error {
	fragment, err := bs.renderer.Render(p.doc.Body)
	if err != nil {
		return WrapError(err, CategoryInternal, SeverityFatal, "markdown render failed").WithPaths(p.doc.SourcePath)
	}

	page, err := bs.composer.Compose(site.Page{
		Title:   p.doc.Title,
		Date:    p.doc.Date,
		Slug:    p.doc.Slug,
		Content: template.HTML(fragment),
	})
	if err != nil {
		// The parser guarantees title and body are present, so this is a bug.
		return WrapError(err, CategoryTemplate, SeverityFatal, "page shell binding failed").WithPaths(p.doc.SourcePath)
	}

	dst := filepath.Join(bs.stagingDir, filepath.FromSlash(p.outPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return WrapError(err, CategoryIO, SeverityFatal, "create output directory").WithPaths(p.doc.SourcePath)
	}
	if err := os.WriteFile(dst, page, 0o644); err != nil {
		return WrapError(err, CategoryIO, SeverityFatal, "write page").WithPaths(p.doc.SourcePath)
	}
	slog.Debug("Page rendered", "source", p.doc.SourcePath, "output", p.outPath)
	return nil
}

func stageAssets(ctx context.Context, bs *buildState) error {
	if err := site.WriteAssets(bs.cfg, bs.stagingDir); err != nil {
		return newFatalStageError(StageAssets, WrapError(err, CategoryConfig, SeverityFatal, "write assets"))
	}
	return nil
}

// stageFinalize publishes the staging directory. With output.clean the old
// output tree is replaced wholesale; otherwise staged files are merged over
// the existing tree, leaving unrelated files in place.
func stageFinalize(ctx context.Context, bs *buildState) error {
	if bs.cfg.Output.Clean {
		if err := os.RemoveAll(bs.outputDir); err != nil {
			return newFatalStageError(StageFinalize, WrapError(err, CategoryIO, SeverityFatal, "clean output directory"))
		}
		if err := os.Rename(bs.stagingDir, bs.outputDir); err != nil {
			return newFatalStageError(StageFinalize, WrapError(err, CategoryIO, SeverityFatal, "publish staging directory"))
		}
		bs.stagingDir = ""
		return nil
	}

	if err := mergeTree(bs.stagingDir, bs.outputDir); err != nil {
		return newFatalStageError(StageFinalize, WrapError(err, CategoryIO, SeverityFatal, "merge staging into output"))
	}
	bs.abortStaging()
	return nil
}

func (bs *buildState) abortStaging() {
	if bs.stagingDir == "" {
		return
	}
	if err := os.RemoveAll(bs.stagingDir); err != nil {
		slog.Warn("Failed to remove staging directory", "dir", bs.stagingDir, "error", err)
	}
	bs.stagingDir = ""
}

func mergeTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		return nil
	})
}
