// Package content discovers and models the documents of the content tree.
package content

import (
	"time"
)

// Document is one content unit: parsed frontmatter plus the raw Markdown body.
//
// A Document is immutable once constructed; the build pipeline only reads it.
type Document struct {
	// SourcePath is the path of the source file relative to the content root,
	// using forward slashes.
	SourcePath string
	// Slug is the derived identifier used to compute the output path.
	Slug  string
	Title string
	Date  time.Time
	Draft bool
	// Body is the raw Markdown body with frontmatter removed.
	Body []byte
}

// Source is a raw content file before frontmatter parsing.
type Source struct {
	// RelPath is the file path relative to the content root, forward slashes.
	RelPath string
	Raw     []byte
}
