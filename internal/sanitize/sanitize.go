// Package sanitize cleans caller-supplied strings before they are written to
// audit logs or echoed back through MCP tool results. It strips control
// characters and markup and bounds the length.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxTextLength is the maximum length kept for free-form text.
const MaxTextLength = 2000

// MaxNameLength is the maximum length kept for identifiers.
const MaxNameLength = 80

var (
	// reXMLTag matches XML/HTML tags including those with attributes and self-closing tags.
	// It also matches XML processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	reExcessiveNewlines = regexp.MustCompile(`\n{3,}`)

	reRepeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// Text sanitizes free-form text such as error messages:
//  1. Strip null bytes and ASCII control characters (except \n, \t)
//  2. Strip XML/HTML tags
//  3. Collapse excessive newlines (3+ -> 2)
//  4. Trim leading/trailing whitespace
//  5. Truncate to MaxTextLength
func Text(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = reExcessiveNewlines.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	if len(s) > MaxTextLength {
		s = s[:MaxTextLength] + "..."
	}
	return s
}

// Name sanitizes an identifier such as a script or file name. Tags are
// removed first, then only [a-zA-Z0-9-_.] is kept, so no path separator
// survives. Repeated hyphens collapse and MaxNameLength is enforced.
func Name(input string) string {
	if input == "" {
		return ""
	}

	input = reXMLTag.ReplaceAllString(input, "")

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	s := reRepeatedHyphens.ReplaceAllString(b.String(), "-")

	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}

// stripControlChars removes ASCII control characters (0x00-0x1F) from the string,
// except for newline (0x0A) and tab (0x09) which are preserved.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
