package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Loader enumerates Markdown sources under a content root.
type Loader struct {
	root string
}

// NewLoader creates a loader for the given content root directory.
func NewLoader(root string) *Loader {
	return &Loader{root: filepath.Clean(root)}
}

// Load walks the content tree and reads every Markdown file.
//
// The walk order is lexical, so repeated invocations over an unchanged tree
// yield the same sequence. An unreadable root is an error; an unreadable
// individual file is skipped with a warning and reported in warnings so the
// caller can surface it without failing the build.
func (l *Loader) Load() (sources []Source, warnings []error, err error) {
	if st, statErr := os.Stat(l.root); statErr != nil || !st.IsDir() {
		return nil, nil, fmt.Errorf("content directory not found or not a directory: %s", l.root)
	}

	walkErr := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == l.root {
				return err
			}
			warnings = append(warnings, fmt.Errorf("skipping %s: %w", path, err))
			slog.Warn("Skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			// Hidden directories (editor state, VCS metadata) are not content.
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") && path != l.root {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			warnings = append(warnings, fmt.Errorf("skipping %s: %w", path, readErr))
			slog.Warn("Skipping unreadable file", "path", path, "error", readErr)
			return nil
		}

		rel, relErr := filepath.Rel(l.root, path)
		if relErr != nil {
			return relErr
		}
		sources = append(sources, Source{RelPath: filepath.ToSlash(rel), Raw: raw})
		return nil
	})
	if walkErr != nil {
		return nil, warnings, fmt.Errorf("walk content tree: %w", walkErr)
	}
	return sources, warnings, nil
}
