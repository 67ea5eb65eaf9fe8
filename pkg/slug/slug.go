package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given display name.
//
// Examples:
//   - "iPhone 15 Pro Max!!" → "iphone-15-pro-max"
//   - "Galaxy   S24  Ultra" → "galaxy-s24-ultra"
//
// The result is NOT guaranteed unique; callers persisting it must rely on a
// unique constraint and retry on conflict.
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Variant creates a slug for a product variant: the base slug suffixed with
// the last 6 digits of the current millisecond timestamp. Variants of the same
// product share a display name, so the suffix keeps concurrently created
// variants from colliding most of the time. It is best-effort only; the
// variants table still carries a unique constraint.
func Variant(name string) string {
	return VariantAt(name, time.Now())
}

// VariantAt is Variant with an injectable clock.
func VariantAt(name string, now time.Time) string {
	return fmt.Sprintf("%s-%06d", Generate(name), now.UnixMilli()%1_000_000)
}

// WithCounter appends a numeric counter to a slug. Used to resolve unique
// constraint violations on insert.
func WithCounter(slug string, n int) string {
	return fmt.Sprintf("%s-%d", slug, n)
}
