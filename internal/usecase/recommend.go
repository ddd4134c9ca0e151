package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fairyhunter13/resume-evaluator/internal/domain"
)

// Generic fallback pools used when the model under-delivers. Order matters:
// entries are consumed front to back when backfilling.
var (
	defaultStrengths = []string{
		"Clear presentation of professional experience",
		"Relevant educational background",
		"Good organization of information",
	}
	defaultImprovements = []string{
		"Add more quantifiable achievements",
		"Tailor skills section to match job requirements",
		"Enhance keywords related to the job description",
	}
	defaultActions = []string{
		"Quantify achievements with specific metrics and results",
		"Tailor your resume to highlight skills relevant to the job description",
		"Use industry-specific keywords throughout your resume",
		"Improve formatting for better readability and visual appeal",
		"Add a strong professional summary highlighting your key qualifications",
	}
)

// fillToN dedups items in order, backfills from defaults (skipping entries
// already present), and truncates to n. Shared by strengths, improvements,
// and action items so the padding behavior cannot drift between them.
func fillToN(items, defaults []string, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	add := func(s string) {
		if len(out) >= n || s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range items {
		add(s)
	}
	for _, s := range defaults {
		add(s)
	}
	return out
}

// DeriveStrengthsAndImprovements returns exactly three unique strengths and
// three unique improvements, backfilled from the default pools when the
// model supplied fewer and truncated when it supplied more.
func DeriveStrengthsAndImprovements(payload *domain.EvaluationPayload) (strengths, improvements []string) {
	var s, i []string
	if payload != nil {
		s = payload.Strengths
		i = payload.Improvements
	}
	return fillToN(s, defaultStrengths, 3), fillToN(i, defaultImprovements, 3)
}

// DeriveMissingKeywords copies the per-category missing lists out of the
// keyword metrics; the synthetic overall aggregate has no missing list.
func DeriveMissingKeywords(km domain.KeywordMetrics) map[string][]string {
	missing := make(map[string][]string, len(km.Categories))
	for category, cov := range km.Categories {
		missing[category] = append([]string(nil), cov.Missing...)
	}
	return missing
}

// DeriveActionItems produces at most five prioritized actions. Model items
// win when there are at least three; otherwise actions are synthesized from
// the two weakest criteria and from keyword categories under 50% coverage,
// then padded from the default pool.
func DeriveActionItems(payload *domain.EvaluationPayload, metrics domain.Metrics, criteria []domain.Criterion) []string {
	var items []string
	if payload != nil {
		items = payload.ActionItems
	}
	items = fillToN(items, nil, 5)
	if len(items) >= 3 {
		return items
	}

	// Stable ascending sort: ties keep the configured criterion order.
	ranked := make([]domain.Criterion, len(criteria))
	copy(ranked, criteria)
	sort.SliceStable(ranked, func(a, b int) bool {
		return metrics.Scores[ranked[a].Name] < metrics.Scores[ranked[b].Name]
	})
	for i := 0; i < len(ranked) && i < 2; i++ {
		items = append(items, fmt.Sprintf("Improve %s in your resume", strings.ToLower(ranked[i].Name)))
	}

	for _, category := range keywordCategoryOrder(metrics.Keywords) {
		if metrics.Keywords.Categories[category].Percentage < 50 {
			items = append(items, fmt.Sprintf("Add missing %s to your resume", strings.ReplaceAll(category, "_", " ")))
		}
	}

	return fillToN(items, defaultActions, 5)
}

// keywordCategoryOrder yields the known categories first, in their canonical
// order, then any extras sorted by name so output stays deterministic.
func keywordCategoryOrder(km domain.KeywordMetrics) []string {
	order := make([]string, 0, len(km.Categories))
	seen := make(map[string]struct{}, len(km.Categories))
	for _, c := range domain.KeywordCategories {
		if _, ok := km.Categories[c]; ok {
			order = append(order, c)
			seen[c] = struct{}{}
		}
	}
	var extra []string
	for c := range km.Categories {
		if _, ok := seen[c]; !ok {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

// suggestionsResponse is the wire shape of the detailed-suggestions call.
type suggestionsResponse struct {
	ContentSuggestions     []string `json:"content_suggestions"`
	StructuralImprovements []string `json:"structural_improvements"`
	WordingChanges         []string `json:"wording_changes"`
	BeforeAfterExample     struct {
		SectionName string `json:"section_name"`
		Before      string `json:"before"`
		After       string `json:"after"`
	} `json:"before_after_example"`
	Summary string `json:"summary"`
}

// renderSuggestions turns a structured suggestions response into the final
// document: the model's summary verbatim when present, otherwise assembled
// markdown sections. Sections with empty sources are omitted, and the
// before/after block requires both sides to be non-empty.
func renderSuggestions(sr suggestionsResponse) string {
	if sr.Summary != "" {
		return sr.Summary
	}

	var sections []string
	appendList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		var b strings.Builder
		b.WriteString("## ")
		b.WriteString(title)
		b.WriteString("\n")
		for _, item := range items {
			b.WriteString("\n- ")
			b.WriteString(item)
		}
		sections = append(sections, b.String())
	}
	appendList("Content Suggestions", sr.ContentSuggestions)
	appendList("Structural Improvements", sr.StructuralImprovements)
	appendList("Wording Changes", sr.WordingChanges)

	ba := sr.BeforeAfterExample
	if ba.Before != "" && ba.After != "" {
		name := ba.SectionName
		if name == "" {
			name = "Section"
		}
		sections = append(sections, fmt.Sprintf("## Example Improvement: %s\n\n### Before:\n\n%s\n\n### After:\n\n%s", name, ba.Before, ba.After))
	}

	return strings.Join(sections, "\n\n")
}
