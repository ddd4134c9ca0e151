// Package domain holds the core entities, error taxonomy, and ports of the
// resume evaluation pipeline. It stays free of third-party imports so that
// adapters and usecases can depend on it without dragging infrastructure in.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConfiguration     = errors.New("configuration error")
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrUpstream          = errors.New("upstream failure")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
)

// KeywordSet maps a category name (technical_skills, soft_skills,
// industry_terms, action_verbs) to its extracted keywords, in model order.
type KeywordSet map[string][]string

// KeywordCategories are the four categories the extraction prompt requests.
var KeywordCategories = []string{"technical_skills", "soft_skills", "industry_terms", "action_verbs"}

// EmptyKeywordSet returns a set with every category present and empty.
// Degraded keyword extraction falls back to this so that downstream metric
// computation still sees all categories.
func EmptyKeywordSet() KeywordSet {
	ks := make(KeywordSet, len(KeywordCategories))
	for _, c := range KeywordCategories {
		ks[c] = []string{}
	}
	return ks
}

// CriterionResult is the per-criterion verdict inside a structured payload.
type CriterionResult struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
	Suggestion  string  `json:"suggestion"`
}

// EvaluationPayload is the structured form of the model's evaluation
// response. Every field is optional; absent fields trigger the degraded
// extraction paths in the metrics engine and recommendation synthesizer.
type EvaluationPayload struct {
	CriteriaScores         map[string]CriterionResult `json:"criteria_scores"`
	OverallMatchPercentage *float64                   `json:"overall_match_percentage"`
	Strengths              []string                   `json:"strengths"`
	Improvements           []string                   `json:"improvements"`
	MissingKeywords        []string                   `json:"missing_keywords"`
	ActionItems            []string                   `json:"action_items"`
	EvaluationSummary      string                     `json:"evaluation_summary"`
}

// EvaluationResult carries the raw completion text, the structured payload
// when parsing succeeded (nil otherwise), and the keyword set extracted from
// the job description. Values live for one request and are never mutated.
type EvaluationResult struct {
	RawText  string             `json:"raw_text"`
	Payload  *EvaluationPayload `json:"payload,omitempty"`
	Keywords KeywordSet         `json:"keywords"`
}

// KeywordCoverage reports per-category keyword presence in the resume.
type KeywordCoverage struct {
	Present    []string `json:"present"`
	Missing    []string `json:"missing"`
	Percentage float64  `json:"percentage"`
}

// OverallCoverage aggregates every keyword across all categories.
type OverallCoverage struct {
	TotalKeywords int     `json:"total_keywords"`
	PresentCount  int     `json:"present_count"`
	Percentage    float64 `json:"percentage"`
}

// KeywordMetrics is the full coverage report: one entry per category plus
// the synthetic overall aggregate.
type KeywordMetrics struct {
	Categories map[string]KeywordCoverage `json:"categories"`
	Overall    OverallCoverage            `json:"overall"`
}

// Metrics is derived entirely from an EvaluationResult and the resume text;
// recomputed fresh per run.
type Metrics struct {
	Scores          map[string]int `json:"scores"`
	MatchPercentage int            `json:"match_percentage"`
	Keywords        KeywordMetrics `json:"keyword_metrics"`
}

// Recommendations is the synthesized advice document. Strengths and
// Improvements hold exactly three entries, ActionItems at most five.
type Recommendations struct {
	Strengths           []string            `json:"strengths"`
	Improvements        []string            `json:"improvements"`
	MissingKeywords     map[string][]string `json:"missing_keywords"`
	ActionItems         []string            `json:"action_items"`
	DetailedSuggestions string              `json:"detailed_suggestions"`
}

// Evaluation bundles everything the rendering layer receives for one run.
type Evaluation struct {
	ID              string           `json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	Result          EvaluationResult `json:"evaluation"`
	Metrics         Metrics          `json:"metrics"`
	Recommendations Recommendations  `json:"recommendations"`
}

// AIClient (port)

// AIClient sends one prompt to the configured model and returns the raw text
// completion. Implementations own authentication and transport retries; a
// single call maps to a single logical completion.
type AIClient interface {
	ChatJSON(ctx Context, prompt string, maxTokens int) (string, error)
}

// TextExtractor (port)
// Extract produces plain UTF-8 text from an uploaded resume file.
// Failures surface as ErrExtractionFailed; the pipeline never starts on them.
type TextExtractor interface {
	Extract(ctx Context, filename string, data []byte) (string, error)
}

// Context aliases context.Context so domain signatures stay stdlib-neutral.
type Context = context.Context
