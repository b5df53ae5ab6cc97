package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: Hello\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: Hello\r\n---\r\n# Title\r\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestParse_FullDocument(t *testing.T) {
	input := []byte("---\ntitle: Hello\ndate: 2024-01-01\n---\n# Hi\n\nworld\n")

	meta, body, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, "Hello", meta.Title)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), meta.Date)
	require.False(t, meta.Draft)
	require.Equal(t, []byte("# Hi\n\nworld\n"), body)
}

func TestParse_DraftFlag(t *testing.T) {
	input := []byte("---\ntitle: WIP\ndate: 2024-06-15\ndraft: true\n---\nbody\n")

	meta, _, err := Parse(input)
	require.NoError(t, err)
	require.True(t, meta.Draft)
}

func TestParse_RFC3339Date(t *testing.T) {
	input := []byte("---\ntitle: T\ndate: 2024-03-09T14:30:00Z\n---\nbody\n")

	meta, _, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, 14, meta.Date.Hour())
}

func TestParse_MissingTitle_Fails(t *testing.T) {
	_, _, err := Parse([]byte("---\ndate: 2024-01-01\n---\nbody\n"))
	require.True(t, errors.Is(err, ErrMissingTitle))
}

func TestParse_MissingDate_Fails(t *testing.T) {
	_, _, err := Parse([]byte("---\ntitle: T\n---\nbody\n"))
	require.True(t, errors.Is(err, ErrMissingDate))
}

func TestParse_BadDate_Fails(t *testing.T) {
	_, _, err := Parse([]byte("---\ntitle: T\ndate: yesterday\n---\nbody\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ISO-8601")
}

func TestParse_NoFrontmatter_Fails(t *testing.T) {
	_, _, err := Parse([]byte("# Just markdown\n"))
	require.True(t, errors.Is(err, ErrNoFrontmatter))
}

func TestParse_UnparseableYAML_Fails(t *testing.T) {
	_, _, err := Parse([]byte("---\ntitle: [unclosed\n---\nbody\n"))
	require.Error(t, err)
}
