// Package frontmatter splits and parses the YAML metadata block at the start
// of a content document.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// ErrNoFrontmatter indicates the document does not begin with a frontmatter block.
var ErrNoFrontmatter = errors.New("document has no frontmatter block")

// ErrMissingTitle indicates the required title key is absent or empty.
var ErrMissingTitle = errors.New("frontmatter is missing required key: title")

// ErrMissingDate indicates the required date key is absent.
var ErrMissingDate = errors.New("frontmatter is missing required key: date")

// Meta is the typed frontmatter of a content document.
//
// Title and Date are required; Draft defaults to false.
type Meta struct {
	Title string
	Date  time.Time
	Draft bool
}

// dateLayouts are the accepted date formats, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[start:], closeLine) {
		return []byte{}, content[start+len(closeLine):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return content[start:end], content[bodyStart:], true, nil
}

// Parse splits a full document and decodes its frontmatter into Meta.
//
// Documents without a frontmatter block, with a malformed block, or missing a
// required key all fail. The caller decides whether that failure is fatal to
// the whole build or only to the document.
func Parse(content []byte) (Meta, []byte, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	if !had {
		return Meta{}, nil, ErrNoFrontmatter
	}

	meta, err := decodeMeta(raw)
	if err != nil {
		return Meta{}, nil, err
	}
	return meta, body, nil
}

func decodeMeta(raw []byte) (Meta, error) {
	var fields struct {
		Title string `yaml:"title"`
		Date  string `yaml:"date"`
		Draft bool   `yaml:"draft"`
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return Meta{}, fmt.Errorf("decode frontmatter: %w", err)
	}

	if fields.Title == "" {
		return Meta{}, ErrMissingTitle
	}
	if fields.Date == "" {
		return Meta{}, ErrMissingDate
	}

	date, err := parseDate(fields.Date)
	if err != nil {
		return Meta{}, err
	}

	return Meta{Title: fields.Title, Date: date, Draft: fields.Draft}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("frontmatter date %q is not an ISO-8601 timestamp", value)
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
