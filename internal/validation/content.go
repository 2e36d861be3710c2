package validation

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Content limits, counted in characters.
const (
	MaxMessageLength = 10000
	MaxThoughtLength = 1000
	MaxCommentLength = 5000
	MaxTitleLength   = 300
	ShortDescLength  = 200
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	mentionRegex = regexp.MustCompile(`@(\w+)`)
)

const maxSanitizePasses = 5

// SanitizeText strips all markup and returns trimmed plain text. Entity
// encoded markup is decoded and stripped again until the text is stable.
func SanitizeText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strictPolicy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// RequireText sanitizes s and checks it is non-empty and at most max characters.
func RequireText(field, s string, max int) (string, error) {
	clean := SanitizeText(s)
	if clean == "" {
		return "", fmt.Errorf("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(clean) > max {
		return "", fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return clean, nil
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// ExtractMentions returns the distinct @usernames in s in order of first appearance.
func ExtractMentions(s string) []string {
	matches := mentionRegex.FindAllStringSubmatch(s, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
