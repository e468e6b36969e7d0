// Package htmlsanitize strips markup from text that arrives from outside the
// application before it reaches a template.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag and attribute. bluemonday policies are safe for
// concurrent use once built.
var strict = bluemonday.StrictPolicy()

// Text returns s with all HTML removed and entities decoded, so the result
// is plain text that html/template can escape exactly once.
func Text(s string) string {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no tag delimiters.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
