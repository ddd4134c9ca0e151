// Package textx provides small text utilities used across the project.
package textx

import (
	"regexp"
	"strings"
)

var (
	multiSpaceRe = regexp.MustCompile(`\s+`)
	junkCharRe   = regexp.MustCompile(`[^\w\s.,;:!?()-]`)
	wordRe       = regexp.MustCompile(`\b\w+\b`)
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	// strip control chars outside tab/newline/carriage return
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CleanText collapses runs of whitespace to single spaces and drops
// characters that carry no signal for matching (decorative bullets, emoji).
func CleanText(s string) string {
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = junkCharRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// KeywordDensity reports what percentage of the words in text are exact
// (case-insensitive) occurrences of the given keywords. Multi-word keywords
// count per matching word position of their lowercase form.
func KeywordDensity(text string, keywords []string) float64 {
	if text == "" || len(keywords) == 0 {
		return 0
	}
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0
	}
	count := 0
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		for _, w := range words {
			if w == kw {
				count++
			}
		}
	}
	return float64(count) / float64(len(words)) * 100.0
}
