// Package validation holds input normalization and content rules shared by services.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FallbackSlug is used when a title has no slug-safe characters.
const FallbackSlug = "project"

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// Slugify turns a title into a lowercase ASCII slug. Accented letters are
// decomposed and their marks dropped; anything else non-ASCII is removed.
// The result may be empty.
func Slugify(s string) string {
	decomposed := norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r <= unicode.MaxASCII {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	out := slugDisallowed.ReplaceAllString(b.String(), "")
	out = slugSeparators.ReplaceAllString(out, "-")
	return strings.Trim(out, "-_")
}

// SlugOrFallback is Slugify with the "project" fallback for empty results.
func SlugOrFallback(s string) string {
	if slug := Slugify(s); slug != "" {
		return slug
	}
	return FallbackSlug
}
