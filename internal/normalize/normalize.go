// Package normalize strips known noise from third-party catalog text:
// marketing suffixes like "(Unlocked)" and locale boilerplate like
// "United States". Cleaning is idempotent.
package normalize

import (
	"regexp"
	"strings"
)

var removePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(unlocked\)`),
	regexp.MustCompile(`(?i)\bunlocked\b`),
	regexp.MustCompile(`(?i)\bunited states\b`),
}

var whitespaceRun = regexp.MustCompile(`\s{2,}`)

// String removes each noise pattern from s, collapses whitespace runs to a
// single space, and trims.
func String(s string) string {
	for _, p := range removePatterns {
		s = strings.TrimSpace(p.ReplaceAllString(s, ""))
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Value cleans every string leaf in an arbitrary decoded JSON value,
// recursing into arrays and objects. Non-string leaves pass through
// unchanged. The input is never mutated; a new structure is returned.
func Value(v any) any {
	switch val := v.(type) {
	case string:
		return String(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Value(item)
		}
		return out
	default:
		return v
	}
}
