// Package frontmatter separates YAML frontmatter from a content document.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a content file split into metadata and body.
type Document struct {
	// Raw is the frontmatter text without delimiters.
	Raw []byte
	// Fields is Raw decoded as YAML; empty when the document has no frontmatter.
	Fields map[string]any
	// Body is everything after the closing delimiter.
	Body []byte
	// HasFrontmatter reports whether the document opened with a delimiter line.
	HasFrontmatter bool
}

// Parse splits content and decodes its frontmatter.
func Parse(content []byte) (Document, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	fields, err := ParseYAML(raw)
	if err != nil {
		return Document{}, err
	}
	return Document{Raw: raw, Fields: fields, Body: body, HasFrontmatter: had}, nil
}

// Decode unmarshals the frontmatter into v.
func (d Document) Decode(v any) error {
	if len(bytes.TrimSpace(d.Raw)) == 0 {
		return nil
	}
	return yaml.Unmarshal(d.Raw, v)
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input. LF and CRLF line endings are both accepted.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + delimiter + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}

	// A closing delimiter on the last line, with no body after it.
	closeAtEOF := []byte(nl + delimiter)
	if bytes.HasSuffix(rest, closeAtEOF) {
		return rest[:len(rest)-len(delimiter)], []byte{}, true, nil
	}

	return nil, nil, false, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
