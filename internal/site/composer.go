package site

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"git.home.luguber.info/inful/inkpress/internal/config"
)

// shellTemplate is the fixed page shell every rendered page is wrapped in.
// Slots without a matching binding render nothing.
const shellTemplate = `<!DOCTYPE html>
<html lang="{{.Language}}"{{if .RTL}} dir="rtl"{{end}}>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · {{.SiteTitle}}</title>
{{if .Author}}<meta name="author" content="{{.Author}}">
{{end}}<link rel="stylesheet" href="{{.Prefix}}assets/style.css">
{{if .RTL}}<link rel="stylesheet" href="{{.Prefix}}assets/rtl.css">
{{end}}{{if .Inverted}}<link rel="stylesheet" href="{{.Prefix}}assets/inverted.css">
{{end}}{{range .Stylesheets}}<link rel="stylesheet" href="{{$.Prefix}}{{.}}">
{{end}}{{if .AnalyticsID}}<script async src="https://www.googletagmanager.com/gtag/js?id={{.AnalyticsID}}"></script>
<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config','{{.AnalyticsID}}');</script>
{{end}}</head>
<body>
<header class="site-header"><a href="{{.Prefix}}index.html">{{.SiteTitle}}</a></header>
<main>
<article>
<p class="meta"><time datetime="{{.Date.Format "2006-01-02"}}">{{.Date.Format "January 2, 2006"}}</time>{{if .Author}} · {{.Author}}{{end}}</p>
{{.Content}}</article>
</main>
<footer class="site-footer">© {{if .Author}}{{.Author}}{{else}}{{.SiteTitle}}{{end}}</footer>
</body>
</html>
`

// Page carries the per-document bindings for the shell.
type Page struct {
	Title   string
	Date    time.Time
	Slug    string
	Content template.HTML
}

// Composer merges rendered fragments with site configuration into complete
// HTML documents.
type Composer struct {
	cfg  *config.Config
	tmpl *template.Template
}

// NewComposer parses the page shell once for reuse across all pages.
func NewComposer(cfg *config.Config) (*Composer, error) {
	tmpl, err := template.New("shell").Parse(shellTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page shell: %w", err)
	}
	return &Composer{cfg: cfg, tmpl: tmpl}, nil
}

// Compose produces the complete HTML document for a page.
//
// A missing mandatory binding (title, content) is an internal invariant
// violation: the metadata parser guarantees no document reaches this stage in
// that state.
func (c *Composer) Compose(p Page) ([]byte, error) {
	if p.Title == "" {
		return nil, fmt.Errorf("page shell: mandatory slot title is unbound for slug %q", p.Slug)
	}
	if len(p.Content) == 0 {
		return nil, fmt.Errorf("page shell: mandatory slot content is unbound for slug %q", p.Slug)
	}

	data := struct {
		Title       string
		SiteTitle   string
		Author      string
		Language    string
		AnalyticsID string
		RTL         bool
		Inverted    bool
		Stylesheets []string
		Prefix      string
		Date        time.Time
		Content     template.HTML
	}{
		Title:       p.Title,
		SiteTitle:   c.cfg.Site.Title,
		Author:      c.cfg.Site.Author,
		Language:    c.cfg.Site.Language,
		AnalyticsID: c.cfg.Site.AnalyticsID,
		RTL:         c.cfg.Theme.RTL,
		Inverted:    c.cfg.Theme.Inverted,
		Stylesheets: c.cfg.Theme.Stylesheets,
		Prefix:      strings.Repeat("../", Depth(p.Slug)),
		Date:        p.Date,
		Content:     p.Content,
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute page shell for slug %q: %w", p.Slug, err)
	}
	return buf.Bytes(), nil
}
