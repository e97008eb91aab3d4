// Package sanitize provides the pure text-filtering functions consumed by the
// chat lifecycle. All functions are stateless and side-effect free.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	displayNameAllowed = regexp.MustCompile(`[^a-zA-Z0-9_\- ]`)
	controlChars       = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	whitespaceRuns     = regexp.MustCompile(`\s+`)

	spamPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)https?://`),
		regexp.MustCompile(`(?i)\bwww\.`),
		regexp.MustCompile(`(?i)\bt\.me/`),
		regexp.MustCompile(`(?i)\bdiscord\.gg/`),
		regexp.MustCompile(`(?i)\bbuy now\b`),
		regexp.MustCompile(`(?i)\bfree money\b`),
		regexp.MustCompile(`(?i)\bguaranteed returns?\b`),
		regexp.MustCompile(`(?i)\bjoin my\b`),
	}
)

// DisplayName strips disallowed characters from a username and trims
// surrounding whitespace. An unusable name sanitizes to the empty string.
func DisplayName(name string) string {
	cleaned := displayNameAllowed.ReplaceAllString(name, "")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}

// Content removes control characters and collapses whitespace in message
// content. Empty output means the message carried nothing usable.
func Content(content string) string {
	cleaned := controlChars.ReplaceAllString(content, "")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}

// HasSpamIndicators reports whether content contains embedded links or
// promotional markers.
func HasSpamIndicators(content string) bool {
	for _, pattern := range spamPatterns {
		if pattern.MatchString(content) {
			return true
		}
	}

	return false
}

// Clip truncates content to at most max runes. Non-positive max leaves the
// content unchanged.
func Clip(content string, max int) string {
	if max <= 0 {
		return content
	}

	runes := []rune(content)
	if len(runes) <= max {
		return content
	}

	return string(runes[:max])
}
