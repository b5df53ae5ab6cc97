// Package markdown converts Markdown bodies into HTML fragments.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer is a deterministic Markdown-to-HTML converter.
//
// Rendering holds no state between calls: identical input always produces
// identical output. Malformed Markdown degrades to literal text per
// CommonMark; there are no input-dependent error conditions.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer constructs a renderer with CommonMark plus GFM tables,
// strikethrough and autolinks. Raw HTML in the body is passed through, since
// content authors own both the input and the site.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts a Markdown body (frontmatter already removed) into an HTML
// fragment.
func (r *Renderer) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}
