// Package site derives output identity and wraps rendered fragments in the
// page shell.
package site

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes diacritics by decomposing and dropping combining marks.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a Document slug from its content-relative source path.
//
// Directory structure is preserved; each path segment is lowercased, has
// diacritics stripped, and has runs of non-alphanumeric characters collapsed
// into single hyphens. The .md extension is removed. The mapping is pure, so
// collision detection over slugs is stable across builds.
func Slugify(relPath string) string {
	p := strings.TrimSuffix(filepath2slash(relPath), path.Ext(relPath))
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = slugifySegment(seg)
	}
	return strings.Join(segments, "/")
}

// OutputPath maps a slug to its output-relative HTML path.
func OutputPath(slug string) string {
	return slug + ".html"
}

// Depth returns the directory depth of a slug, used to compute relative asset
// link prefixes in the page shell.
func Depth(slug string) int {
	return strings.Count(slug, "/")
}

func slugifySegment(seg string) string {
	if folded, _, err := transform.String(stripMarks, seg); err == nil {
		seg = folded
	}
	seg = strings.ToLower(seg)

	var b strings.Builder
	b.Grow(len(seg))
	lastHyphen := true // suppress leading hyphen
	for _, r := range seg {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func filepath2slash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
