package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Free-text fields are stored as plain text; any markup is stripped
var textPolicy = bluemonday.StrictPolicy()

// CleanText strips markup and surrounding whitespace from user input.
// The policy entity-encodes its output, so the result is unescaped back to plain text;
// every renderer escapes again on output.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// CleanList cleans every entry and drops the empty ones
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := CleanText(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
