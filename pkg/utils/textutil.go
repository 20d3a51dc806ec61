// Package utils provides small shared helpers: calendar-day bucketing for
// sentiment aggregation and text cleaning for model input.
package utils

import (
	"strings"
	"unicode"
)

// CleanText flattens newlines, strips non-ASCII runes, and collapses
// repeated whitespace. Model input is cleaned with this before
// summarization so stray markup and encoding artifacts don't leak into
// prompts.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		if r > unicode.MaxASCII {
			r = ' '
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Truncate cuts s to at most n bytes. ASCII-cleaned input keeps rune and
// byte lengths aligned, so a byte cut is safe after CleanText.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
