package site

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/inkpress/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{Site: config.SiteConfig{Title: "My Blog", Author: "Jane"}}
	cfg.ApplyDefaults()
	return cfg
}

func compose(t *testing.T, cfg *config.Config, p Page) []byte {
	t.Helper()
	c, err := NewComposer(cfg)
	require.NoError(t, err)
	out, err := c.Compose(p)
	require.NoError(t, err)
	return out
}

// findNodes returns all elements with the given tag name.
func findNodes(t *testing.T, doc []byte, tag string) []*html.Node {
	t.Helper()
	root, err := html.Parse(bytes.NewReader(doc))
	require.NoError(t, err)

	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestCompose_WrapsContentInShell(t *testing.T) {
	out := compose(t, testConfig(), Page{
		Title:   "Hello",
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Slug:    "hello",
		Content: template.HTML("<h1>Hi</h1>\n<p>world</p>\n"),
	})

	titles := findNodes(t, out, "title")
	require.Len(t, titles, 1)
	require.Contains(t, textOf(titles[0]), "Hello")

	h1s := findNodes(t, out, "h1")
	require.Len(t, h1s, 1)
	require.Equal(t, "Hi", textOf(h1s[0]))

	var paras []string
	for _, p := range findNodes(t, out, "p") {
		paras = append(paras, textOf(p))
	}
	require.Contains(t, paras, "world")

	require.Len(t, findNodes(t, out, "header"), 1)
	require.Len(t, findNodes(t, out, "footer"), 1)
}

func TestCompose_RTLStylesheetToggle(t *testing.T) {
	page := Page{Title: "T", Slug: "t", Content: template.HTML("<p>x</p>")}

	cfg := testConfig()
	cfg.Theme.RTL = true
	out := compose(t, cfg, page)
	require.Contains(t, stylesheetHrefs(t, out), "assets/rtl.css")

	cfg = testConfig()
	out = compose(t, cfg, page)
	require.NotContains(t, stylesheetHrefs(t, out), "assets/rtl.css")
}

func TestCompose_InvertedStylesheetToggle(t *testing.T) {
	cfg := testConfig()
	cfg.Theme.Inverted = true
	out := compose(t, cfg, Page{Title: "T", Slug: "t", Content: template.HTML("<p>x</p>")})
	require.Contains(t, stylesheetHrefs(t, out), "assets/inverted.css")
}

func TestCompose_CustomStylesheetsLinkedInOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Theme.Stylesheets = []string{"css/a.css", "css/b.css"}
	out := compose(t, cfg, Page{Title: "T", Slug: "t", Content: template.HTML("<p>x</p>")})

	hrefs := stylesheetHrefs(t, out)
	var idxA, idxB int
	for i, h := range hrefs {
		switch h {
		case "css/a.css":
			idxA = i
		case "css/b.css":
			idxB = i
		}
	}
	require.Contains(t, hrefs, "css/a.css")
	require.Contains(t, hrefs, "css/b.css")
	require.Less(t, idxA, idxB)
}

func TestCompose_NestedSlugUsesRelativePrefix(t *testing.T) {
	out := compose(t, testConfig(), Page{Title: "T", Slug: "notes/2024/deep", Content: template.HTML("<p>x</p>")})
	require.Contains(t, stylesheetHrefs(t, out), "../../assets/style.css")
}

func TestCompose_AnalyticsSnippetOnlyWhenConfigured(t *testing.T) {
	page := Page{Title: "T", Slug: "t", Content: template.HTML("<p>x</p>")}

	out := compose(t, testConfig(), page)
	require.Empty(t, findNodes(t, out, "script"))

	cfg := testConfig()
	cfg.Site.AnalyticsID = "G-ABC123"
	out = compose(t, cfg, page)
	require.NotEmpty(t, findNodes(t, out, "script"))
	require.Contains(t, string(out), "G-ABC123")
}

func TestCompose_MissingTitle_Fails(t *testing.T) {
	c, err := NewComposer(testConfig())
	require.NoError(t, err)
	_, err = c.Compose(Page{Slug: "t", Content: template.HTML("<p>x</p>")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "title")
}

func TestCompose_MissingContent_Fails(t *testing.T) {
	c, err := NewComposer(testConfig())
	require.NoError(t, err)
	_, err = c.Compose(Page{Title: "T", Slug: "t"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "content")
}

func TestCompose_Deterministic(t *testing.T) {
	cfg := testConfig()
	page := Page{Title: "T", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Slug: "t", Content: template.HTML("<p>x</p>")}
	first := compose(t, cfg, page)
	second := compose(t, cfg, page)
	require.Equal(t, first, second)
}

func stylesheetHrefs(t *testing.T, doc []byte) []string {
	t.Helper()
	var hrefs []string
	for _, l := range findNodes(t, doc, "link") {
		if attr(l, "rel") == "stylesheet" {
			hrefs = append(hrefs, attr(l, "href"))
		}
	}
	return hrefs
}
