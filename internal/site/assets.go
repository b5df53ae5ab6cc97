package site

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/inkpress/internal/config"
)

// Default stylesheets written into every output tree. RTL and inverted
// variants are only written when the corresponding theme flag is set, matching
// the conditional links emitted by the page shell.
const (
	baseStylesheet = `body{margin:0 auto;max-width:44rem;padding:0 1rem;font-family:Georgia,serif;line-height:1.6;color:#1a1a1a}
.site-header{padding:1.5rem 0;border-bottom:1px solid #ddd}
.site-header a{color:inherit;text-decoration:none;font-weight:bold}
.site-footer{padding:1.5rem 0;border-top:1px solid #ddd;color:#666;font-size:.9rem}
.meta{color:#666;font-size:.9rem}
pre{overflow-x:auto;background:#f6f6f6;padding:1rem}
code{font-family:ui-monospace,monospace;font-size:.95em}
img{max-width:100%}
`
	rtlStylesheet = `body{direction:rtl;text-align:right}
pre,code{direction:ltr;text-align:left}
`
	invertedStylesheet = `body{background:#111;color:#e8e8e8}
.site-header,.site-footer{border-color:#333}
.site-footer,.meta{color:#999}
pre{background:#1c1c1c}
a{color:#8ab4f8}
`
)

// WriteAssets writes default stylesheets and copies configured custom
// stylesheets from the content tree into outputDir.
//
// Custom stylesheet paths are resolved relative to the content directory and
// preserved relative to the output root, so shell links line up. A missing
// custom stylesheet is a configuration error.
func WriteAssets(cfg *config.Config, outputDir string) error {
	assetsDir := filepath.Join(outputDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return fmt.Errorf("create assets directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(assetsDir, "style.css"), []byte(baseStylesheet), 0o644); err != nil {
		return fmt.Errorf("write base stylesheet: %w", err)
	}
	if cfg.Theme.RTL {
		if err := os.WriteFile(filepath.Join(assetsDir, "rtl.css"), []byte(rtlStylesheet), 0o644); err != nil {
			return fmt.Errorf("write rtl stylesheet: %w", err)
		}
	}
	if cfg.Theme.Inverted {
		if err := os.WriteFile(filepath.Join(assetsDir, "inverted.css"), []byte(invertedStylesheet), 0o644); err != nil {
			return fmt.Errorf("write inverted stylesheet: %w", err)
		}
	}

	for _, rel := range cfg.Theme.Stylesheets {
		src := filepath.Join(cfg.Content.Directory, filepath.FromSlash(rel))
		dst := filepath.Join(outputDir, filepath.FromSlash(rel))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copy stylesheet %s: %w", rel, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
