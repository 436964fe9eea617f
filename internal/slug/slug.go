// Package slug derives URL fragment identifiers from heading text.
//
// The transformation is fixed so that anchors stay stable across renders and
// across the published site: lowercase, trim, whitespace runs to a hyphen,
// "&" to "-and-", drop everything outside [A-Za-z0-9_-], collapse hyphens.
// Identical headings produce identical slugs; collisions are not resolved.
package slug

import (
	"regexp"
	"strings"
)

// whitespace matches the ECMAScript \s class, which is wider than RE2's \s.
const whitespace = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	spaceRun   = regexp.MustCompile(`[` + whitespace + `]+`)
	nonWord    = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)
	hyphenRuns = regexp.MustCompile(`-{2,}`)
)

// Make returns the anchor slug for text.
func Make(text string) string {
	s := strings.ToLower(text)
	s = strings.TrimFunc(s, isSpace)
	s = spaceRun.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "&", "-and-")
	s = nonWord.ReplaceAllString(s, "")
	return hyphenRuns.ReplaceAllString(s, "-")
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}
