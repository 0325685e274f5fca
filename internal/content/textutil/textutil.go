// Package textutil holds the pure text helpers used when building prompts
// and cleaning model output. Nothing here performs I/O.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Provider-side prompt limits, in characters.
const (
	MaxImagePromptChars = 4000
	MaxTextPromptChars  = 32000
)

const ellipsis = "..."

// Truncate shortens s to at most maxChars runes, preferring to cut at a word
// boundary and marking the cut with "...". maxChars <= 0 disables the cap.
func Truncate(s string, maxChars int) string {
	s = strings.TrimSpace(s)
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	if maxChars <= len(ellipsis) {
		return string([]rune(s)[:maxChars])
	}
	r := []rune(s)[:maxChars-len(ellipsis)]
	cut := string(r)
	if i := strings.LastIndexAny(cut, " \n\t"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + ellipsis
}

// Clip returns the first n runes of s without any marker. Used for
// diagnostics.
func Clip(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

var quotePairs = [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}, {"‘", "’"}}

// Unquote removes one layer of matching quotes wrapping the whole string.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range quotePairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			inner := s[len(p[0]) : len(s)-len(p[1])]
			if !strings.Contains(inner, p[0]) || p[0] != p[1] {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}

var labelPrefixRE = regexp.MustCompile(`(?i)^(heading|title|subheading|paragraph|statement|answer|text)\s*:\s*`)

// DropLabel removes a leading "Heading:" style label the model sometimes
// adds in front of a single-value answer.
func DropLabel(s string) string {
	return strings.TrimSpace(labelPrefixRE.ReplaceAllString(strings.TrimSpace(s), ""))
}

// FirstLine returns the first non-empty line of s.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
