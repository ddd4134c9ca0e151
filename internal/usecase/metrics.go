package usecase

import (
	"math"
	"strings"

	"github.com/fairyhunter13/resume-evaluator/internal/domain"
)

// Documented defaults for metrics that cannot be derived from the response.
const (
	defaultCriterionScore  = 5
	defaultMatchPercentage = 50
)

// ExtractScores returns exactly one 1-10 score per configured criterion.
// Precedence per criterion: integer score in the structured payload, then
// the text miner over the raw response, then the default. The model's output
// format degrades from strict JSON to prose under load; missing criteria are
// filled rather than dropped.
func ExtractScores(res domain.EvaluationResult, criteria []domain.Criterion) map[string]int {
	miner := NewTextMiner()
	scores := make(map[string]int, len(criteria))
	for _, c := range criteria {
		if res.Payload != nil {
			if cr, ok := res.Payload.CriteriaScores[c.Name]; ok {
				if n, ok := integerScore(cr.Score); ok {
					scores[c.Name] = n
					continue
				}
			}
		}
		if n, ok := miner.MineScore(res.RawText, c.Name); ok {
			scores[c.Name] = n
			continue
		}
		scores[c.Name] = defaultCriterionScore
	}
	return scores
}

// integerScore accepts a JSON number only when it is a whole value in [1,10].
func integerScore(v float64) (int, bool) {
	if v != math.Trunc(v) || v < 1 || v > 10 {
		return 0, false
	}
	return int(v), true
}

// ExtractOverallMatch returns a 0-100 match percentage. Precedence: explicit
// integer field, text-mined percentage, weighted average of the recovered
// scores scaled from the 1-10 range, then the default.
func ExtractOverallMatch(res domain.EvaluationResult, criteria []domain.Criterion) int {
	if res.Payload != nil && res.Payload.OverallMatchPercentage != nil {
		v := *res.Payload.OverallMatchPercentage
		if v == math.Trunc(v) && v >= 0 && v <= 100 {
			return int(v)
		}
	}
	if n, ok := NewTextMiner().MineOverallMatch(res.RawText); ok {
		return n
	}

	scores := ExtractScores(res, criteria)
	weightedSum := 0.0
	totalWeight := 0.0
	for _, c := range criteria {
		weightedSum += float64(scores[c.Name]) * c.Weight
		totalWeight += c.Weight
	}
	if totalWeight > 0 {
		pct := int(math.Round(weightedSum / totalWeight * 10))
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		return pct
	}
	return defaultMatchPercentage
}

// ComputeKeywordMetrics reports, per category and overall, which keywords
// appear in the resume. Presence is a case-insensitive substring test: no
// stemming, no word boundaries, so "engineer" matches inside "engineering".
// Pure and total; empty categories yield 0%.
func ComputeKeywordMetrics(resumeText string, keywords domain.KeywordSet) domain.KeywordMetrics {
	resumeLower := strings.ToLower(resumeText)

	categories := make(map[string]domain.KeywordCoverage, len(keywords))
	total := 0
	presentTotal := 0
	for category, list := range keywords {
		present := []string{}
		missing := []string{}
		for _, kw := range list {
			if kw != "" && strings.Contains(resumeLower, strings.ToLower(kw)) {
				present = append(present, kw)
			} else {
				missing = append(missing, kw)
			}
		}
		pct := 0.0
		if len(list) > 0 {
			pct = float64(len(present)) / float64(len(list)) * 100
		}
		categories[category] = domain.KeywordCoverage{Present: present, Missing: missing, Percentage: pct}
		total += len(list)
		presentTotal += len(present)
	}

	overallPct := 0.0
	if total > 0 {
		overallPct = float64(presentTotal) / float64(total) * 100
	}
	return domain.KeywordMetrics{
		Categories: categories,
		Overall: domain.OverallCoverage{
			TotalKeywords: total,
			PresentCount:  presentTotal,
			Percentage:    overallPct,
		},
	}
}

// CalculateMetrics derives the full metric set for one evaluation run.
func CalculateMetrics(res domain.EvaluationResult, resumeText string, criteria []domain.Criterion) domain.Metrics {
	return domain.Metrics{
		Scores:          ExtractScores(res, criteria),
		MatchPercentage: ExtractOverallMatch(res, criteria),
		Keywords:        ComputeKeywordMetrics(resumeText, res.Keywords),
	}
}
