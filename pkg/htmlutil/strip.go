// Package htmlutil converts HTML fragments, such as EPUB descriptions,
// into plain text suitable for storage and display.
package htmlutil

import (
	"html"
	"regexp"
	"strings"
)

// blockBreakPattern matches closing block tags and line breaks that should
// become newlines in the plain-text output.
var blockBreakPattern = regexp.MustCompile(`(?i)(</(?:p|div|li|h[1-6]|blockquote|tr)>|<br\s*/?>)`)

// tagPattern matches any remaining HTML tag.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// spaceRunPattern matches runs of spaces and tabs.
var spaceRunPattern = regexp.MustCompile(`[ \t]{2,}`)

// StripTags removes HTML markup from a string, keeping paragraph breaks as
// newlines and decoding entity references.
func StripTags(s string) string {
	if s == "" {
		return ""
	}

	out := blockBreakPattern.ReplaceAllString(s, "\n")
	out = tagPattern.ReplaceAllString(out, "")
	out = html.UnescapeString(out)
	out = strings.ReplaceAll(out, " ", " ")
	out = spaceRunPattern.ReplaceAllString(out, " ")

	lines := strings.Split(out, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
