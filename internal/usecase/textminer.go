package usecase

import (
	"fmt"
	"regexp"
	"strconv"
)

// TextMiner is the best-effort fallback for responses that degraded from
// JSON to prose. It holds a fixed grammar of patterns per field so the
// heuristics can evolve without touching the metric contracts.
//
// Patterns are tried in order; the first hit wins. A hit with an
// out-of-range value counts as a miss so the caller's default applies.
type TextMiner struct{}

// NewTextMiner creates a text miner.
func NewTextMiner() *TextMiner { return &TextMiner{} }

// scorePatterns are instantiated per criterion name, matching
// "<criterion>: 8/10", "<criterion> ... 8 out of 10", and
// "<criterion> ... score: 8", case-insensitively within a single line.
var scorePatterns = []string{
	`(?i)%s\s*:?\s*(\d{1,2})\s*/\s*10`,
	`(?i)%s[^\n]*?(\d{1,2})\s+out\s+of\s+10`,
	`(?i)%s[^\n]*?score\s*:?\s*(\d{1,2})`,
}

var matchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)overall\s+match\s*:?\s*(\d{1,3})\s*%`),
	regexp.MustCompile(`(?i)match\s+percentage\s*:?\s*(\d{1,3})\s*%`),
	regexp.MustCompile(`(?i)(\d{1,3})\s*%\s*match`),
	regexp.MustCompile(`(?i)(\d{1,3})\s*%\s*overall`),
}

// MineScore searches text for a 1-10 score attached to the criterion name.
func (m *TextMiner) MineScore(text, criterion string) (int, bool) {
	if text == "" || criterion == "" {
		return 0, false
	}
	quoted := regexp.QuoteMeta(criterion)
	for _, p := range scorePatterns {
		re, err := regexp.Compile(fmt.Sprintf(p, quoted))
		if err != nil {
			continue
		}
		if match := re.FindStringSubmatch(text); match != nil {
			n, err := strconv.Atoi(match[1])
			if err == nil && n >= 1 && n <= 10 {
				return n, true
			}
			return 0, false
		}
	}
	return 0, false
}

// MineOverallMatch searches text for a 0-100 overall match percentage.
func (m *TextMiner) MineOverallMatch(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	for _, re := range matchPatterns {
		if match := re.FindStringSubmatch(text); match != nil {
			n, err := strconv.Atoi(match[1])
			if err == nil && n >= 0 && n <= 100 {
				return n, true
			}
			return 0, false
		}
	}
	return 0, false
}
