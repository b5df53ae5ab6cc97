package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func render(t *testing.T, input string) string {
	t.Helper()
	out, err := NewRenderer().Render([]byte(input))
	require.NoError(t, err)
	return string(out)
}

func TestRender_HeadingAndParagraph(t *testing.T) {
	out := render(t, "# Hi\n\nworld\n")
	require.Contains(t, out, "<h1>Hi</h1>")
	require.Contains(t, out, "<p>world</p>")
}

func TestRender_Emphasis(t *testing.T) {
	out := render(t, "some *emphasis* and **strong** text\n")
	require.Contains(t, out, "<em>emphasis</em>")
	require.Contains(t, out, "<strong>strong</strong>")
}

func TestRender_LinksAndImages(t *testing.T) {
	out := render(t, "[home](/index.html)\n\n![alt text](/img/cat.png)\n")
	require.Contains(t, out, `<a href="/index.html">home</a>`)
	require.Contains(t, out, `<img src="/img/cat.png" alt="alt text"`)
}

func TestRender_FencedCodeBlockIsVerbatim(t *testing.T) {
	out := render(t, "```\n# not a heading\n*not emphasis*\n```\n")
	require.Contains(t, out, "<pre><code")
	require.Contains(t, out, "# not a heading")
	require.NotContains(t, out, "<h1>")
	require.NotContains(t, out, "<em>")
}

func TestRender_Lists(t *testing.T) {
	out := render(t, "- one\n- two\n\n1. first\n2. second\n")
	require.Contains(t, out, "<ul>")
	require.Contains(t, out, "<li>one</li>")
	require.Contains(t, out, "<ol>")
	require.Contains(t, out, "<li>first</li>")
}

func TestRender_MalformedInputDegradesToText(t *testing.T) {
	out := render(t, "[unclosed link\n")
	require.Contains(t, out, "[unclosed link")
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer()
	input := []byte("# Title\n\nSome *text* with a [link](/a).\n\n- a\n- b\n")
	first, err := r.Render(input)
	require.NoError(t, err)
	second, err := r.Render(input)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
