package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-evaluator/internal/config"
	"github.com/fairyhunter13/resume-evaluator/internal/domain"
)

// scriptedAI returns one canned completion per call, in order, and records
// the prompts it saw. The last response repeats if the script runs out.
type scriptedAI struct {
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedAI) ChatJSON(_ domain.Context, prompt string, _ int) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	i := len(s.prompts) - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func testCfg() config.Config {
	// Zero budget disables prompt truncation so tests stay offline.
	return config.Config{AppEnv: "test", ChatMaxTokens: 1024, PromptTokenBudget: 0}
}

const keywordJSON = `{
	"technical_skills": ["Go", "Kubernetes"],
	"soft_skills": ["Communication"],
	"industry_terms": ["SLA"],
	"action_verbs": ["Led"]
}`

const evaluationJSON = `{
	"criteria_scores": {
		"Relevance to Job Description": {"score": 8, "explanation": "e", "suggestion": "s"},
		"Skills Match": {"score": 7, "explanation": "e", "suggestion": "s"}
	},
	"overall_match_percentage": 74,
	"strengths": ["Strong Go background", "Clear history", "Good education"],
	"improvements": ["Quantify results", "Add keywords", "Tighten summary"],
	"action_items": ["Add metrics", "List Kubernetes work", "Rewrite summary"],
	"evaluation_summary": "Solid fit."
}`

const suggestionsJSON = `{"summary": "Lead with quantified impact."}`

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	t.Run("structured response", func(t *testing.T) {
		t.Parallel()
		ai := &scriptedAI{responses: []string{keywordJSON}}
		svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

		ks, err := svc.ExtractKeywords(context.Background(), "jd")
		require.NoError(t, err)
		assert.Equal(t, []string{"Go", "Kubernetes"}, ks["technical_skills"])
		assert.Equal(t, []string{"Led"}, ks["action_verbs"])
	})

	t.Run("fenced response still decodes", func(t *testing.T) {
		t.Parallel()
		ai := &scriptedAI{responses: []string{"```json\n" + keywordJSON + "\n```"}}
		svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

		ks, err := svc.ExtractKeywords(context.Background(), "jd")
		require.NoError(t, err)
		assert.Equal(t, []string{"Communication"}, ks["soft_skills"])
	})

	t.Run("undecodable response degrades to empty set", func(t *testing.T) {
		t.Parallel()
		ai := &scriptedAI{responses: []string{"I could not produce JSON."}}
		svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

		ks, err := svc.ExtractKeywords(context.Background(), "jd")
		require.NoError(t, err)
		assert.Equal(t, domain.EmptyKeywordSet(), ks)
	})

	t.Run("missing category comes back empty not nil", func(t *testing.T) {
		t.Parallel()
		ai := &scriptedAI{responses: []string{`{"technical_skills": ["Go"]}`}}
		svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

		ks, err := svc.ExtractKeywords(context.Background(), "jd")
		require.NoError(t, err)
		assert.NotNil(t, ks["soft_skills"])
		assert.Empty(t, ks["soft_skills"])
	})

	t.Run("transport error propagates", func(t *testing.T) {
		t.Parallel()
		ai := &scriptedAI{err: domain.ErrUpstream}
		svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

		_, err := svc.ExtractKeywords(context.Background(), "jd")
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestAnalyzeHappyPath(t *testing.T) {
	t.Parallel()
	ai := &scriptedAI{responses: []string{keywordJSON, evaluationJSON, suggestionsJSON}}
	svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

	ev, err := svc.Analyze(context.Background(), AnalyzeInput{
		ResumeText:     "Go engineer who Led Kubernetes migrations.",
		JobDescription: "Looking for a Go engineer.",
		CompanyName:    "Acme",
		RoleName:       "Backend Engineer",
	})
	require.NoError(t, err)

	require.Len(t, ai.prompts, 3)
	assert.Contains(t, ai.prompts[1], "Backend Engineer position at Acme")
	assert.Contains(t, ai.prompts[2], "PREVIOUS EVALUATION RESULTS:")

	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())
	require.NotNil(t, ev.Result.Payload)
	assert.Equal(t, 74, ev.Metrics.MatchPercentage)
	assert.Equal(t, 8, ev.Metrics.Scores["Relevance to Job Description"])
	// Criteria absent from the payload still get a score.
	assert.Equal(t, defaultCriterionScore, ev.Metrics.Scores["Education Match"])

	assert.Equal(t, []string{"Strong Go background", "Clear history", "Good education"}, ev.Recommendations.Strengths)
	assert.Equal(t, []string{"Add metrics", "List Kubernetes work", "Rewrite summary"}, ev.Recommendations.ActionItems)
	assert.Equal(t, "Lead with quantified impact.", ev.Recommendations.DetailedSuggestions)

	// "Go", "Kubernetes", and "Led" appear in the resume.
	assert.Equal(t, 5, ev.Metrics.Keywords.Overall.TotalKeywords)
	assert.Equal(t, 3, ev.Metrics.Keywords.Overall.PresentCount)
}

func TestAnalyzeDegradedEvaluation(t *testing.T) {
	t.Parallel()
	prose := "Overall match: 61%\nSkills Match: 6/10\nThe resume is decent."
	ai := &scriptedAI{responses: []string{"not json", prose, "plain advice, no JSON"}}
	svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

	ev, err := svc.Analyze(context.Background(), AnalyzeInput{
		ResumeText:     "resume",
		JobDescription: "jd",
		CompanyName:    "Acme",
		RoleName:       "Engineer",
	})
	require.NoError(t, err)

	assert.Nil(t, ev.Result.Payload)
	assert.Equal(t, prose, ev.Result.RawText)
	assert.Equal(t, 61, ev.Metrics.MatchPercentage)
	assert.Equal(t, 6, ev.Metrics.Scores["Skills Match"])
	// Undecodable suggestions fall back to the raw reply.
	assert.Equal(t, "plain advice, no JSON", ev.Recommendations.DetailedSuggestions)
	// Synthesized strengths come from the default pool.
	assert.Equal(t, defaultStrengths, ev.Recommendations.Strengths)

	// The suggestions prompt carries the raw text since no payload decoded.
	assert.Contains(t, ai.prompts[2], prose)
}

func TestAnalyzeEvaluationCallFails(t *testing.T) {
	t.Parallel()
	ai := &scriptedAI{err: domain.ErrUpstreamTimeout}
	svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

	_, err := svc.Analyze(context.Background(), AnalyzeInput{ResumeText: "r", JobDescription: "jd"})
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestSynthesizePassesPayloadJSON(t *testing.T) {
	t.Parallel()
	ai := &scriptedAI{responses: []string{suggestionsJSON}}
	svc := NewAnalyzerService(ai, domain.DefaultCriteria(), testCfg())

	pct := 74.0
	res := domain.EvaluationResult{
		RawText: "raw prose that should not be forwarded",
		Payload: &domain.EvaluationPayload{OverallMatchPercentage: &pct},
	}
	recs, err := svc.Synthesize(context.Background(), "resume", "jd", res, domain.Metrics{})
	require.NoError(t, err)

	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], `"overall_match_percentage":74`)
	assert.NotContains(t, ai.prompts[0], "raw prose that should not be forwarded")
	assert.Equal(t, "Lead with quantified impact.", recs.DetailedSuggestions)
	assert.Len(t, recs.Strengths, 3)
	assert.Len(t, recs.Improvements, 3)
}
