package usecase

import (
	"encoding/json"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/fairyhunter13/resume-evaluator/internal/adapter/ai"
	"github.com/fairyhunter13/resume-evaluator/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/resume-evaluator/internal/config"
	"github.com/fairyhunter13/resume-evaluator/internal/domain"
	"github.com/fairyhunter13/resume-evaluator/internal/observability"
	"github.com/fairyhunter13/resume-evaluator/pkg/textx"
)

// AnalyzerService runs the evaluation pipeline: keyword extraction,
// evaluation, metric computation, and recommendation synthesis, as one
// sequential flow per request. Instances hold no mutable state, so
// concurrent requests are naturally isolated.
type AnalyzerService struct {
	AI       domain.AIClient
	Criteria []domain.Criterion
	Cfg      config.Config

	parser  *ai.ResponseParser
	counter *tokencount.Counter
}

// NewAnalyzerService constructs an AnalyzerService with its dependencies.
func NewAnalyzerService(client domain.AIClient, criteria []domain.Criterion, cfg config.Config) AnalyzerService {
	return AnalyzerService{
		AI:       client,
		Criteria: criteria,
		Cfg:      cfg,
		parser:   ai.NewResponseParser(),
		counter:  tokencount.NewCounter(),
	}
}

// AnalyzeInput is the request to one evaluation run.
type AnalyzeInput struct {
	ResumeText     string
	JobDescription string
	CompanyName    string
	RoleName       string
}

// keywordResponse is the wire shape of the keyword extraction call.
type keywordResponse struct {
	TechnicalSkills []string `json:"technical_skills"`
	SoftSkills      []string `json:"soft_skills"`
	IndustryTerms   []string `json:"industry_terms"`
	ActionVerbs     []string `json:"action_verbs"`
}

// ExtractKeywords asks the model for categorized keywords from the job
// description. Transport failures propagate; an undecodable response
// degrades to the empty set rather than failing the run.
func (s AnalyzerService) ExtractKeywords(ctx domain.Context, jobDescription string) (domain.KeywordSet, error) {
	prompt := BuildKeywordExtractionPrompt(s.truncate(jobDescription))
	raw, err := s.AI.ChatJSON(ctx, prompt, s.Cfg.ChatMaxTokens)
	if err != nil {
		return nil, err
	}

	var kr keywordResponse
	if !s.parser.Decode(raw, &kr) {
		observability.LoggerFromContext(ctx).Warn("keyword extraction degraded to empty set",
			slog.Int("raw_len", len(raw)))
		return domain.EmptyKeywordSet(), nil
	}
	return domain.KeywordSet{
		"technical_skills": orEmpty(kr.TechnicalSkills),
		"soft_skills":      orEmpty(kr.SoftSkills),
		"industry_terms":   orEmpty(kr.IndustryTerms),
		"action_verbs":     orEmpty(kr.ActionVerbs),
	}, nil
}

// Analyze runs the full pipeline and returns the rendered evaluation.
// Parse failures inside any round-trip degrade to defaults; only transport
// and configuration failures abort the run.
func (s AnalyzerService) Analyze(ctx domain.Context, in AnalyzeInput) (domain.Evaluation, error) {
	lg := observability.LoggerFromContext(ctx)
	resumeText := s.truncate(in.ResumeText)
	jobDescription := s.truncate(in.JobDescription)

	keywords, err := s.ExtractKeywords(ctx, jobDescription)
	if err != nil {
		return domain.Evaluation{}, err
	}
	var allKeywords []string
	for _, list := range keywords {
		allKeywords = append(allKeywords, list...)
	}
	lg.Debug("keywords extracted",
		slog.Int("count", len(allKeywords)),
		slog.Float64("density_pct", textx.KeywordDensity(resumeText, allKeywords)))

	prompt := BuildEvaluationPrompt(resumeText, jobDescription, in.CompanyName, in.RoleName, s.Criteria)
	raw, err := s.AI.ChatJSON(ctx, prompt, s.Cfg.ChatMaxTokens)
	if err != nil {
		return domain.Evaluation{}, err
	}

	var payload domain.EvaluationPayload
	res := domain.EvaluationResult{RawText: raw, Keywords: keywords}
	if s.parser.Decode(raw, &payload) {
		res.Payload = &payload
	} else {
		lg.Warn("evaluation response degraded to raw text", slog.Int("raw_len", len(raw)))
	}

	metrics := CalculateMetrics(res, in.ResumeText, s.Criteria)

	recs, err := s.Synthesize(ctx, resumeText, jobDescription, res, metrics)
	if err != nil {
		return domain.Evaluation{}, err
	}

	return domain.Evaluation{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Result:          res,
		Metrics:         metrics,
		Recommendations: recs,
	}, nil
}

// Synthesize derives the recommendation document, including one extra model
// round-trip for detailed suggestions.
func (s AnalyzerService) Synthesize(ctx domain.Context, resumeText, jobDescription string, res domain.EvaluationResult, metrics domain.Metrics) (domain.Recommendations, error) {
	strengths, improvements := DeriveStrengthsAndImprovements(res.Payload)

	detailed, err := s.detailedSuggestions(ctx, resumeText, jobDescription, res)
	if err != nil {
		return domain.Recommendations{}, err
	}

	return domain.Recommendations{
		Strengths:           strengths,
		Improvements:        improvements,
		MissingKeywords:     DeriveMissingKeywords(metrics.Keywords),
		ActionItems:         DeriveActionItems(res.Payload, metrics, s.Criteria),
		DetailedSuggestions: detailed,
	}, nil
}

// detailedSuggestions runs the suggestions round-trip. The prior evaluation
// is passed back as compact JSON when structured, raw text otherwise. An
// undecodable reply falls back to the raw suggestion text.
func (s AnalyzerService) detailedSuggestions(ctx domain.Context, resumeText, jobDescription string, res domain.EvaluationResult) (string, error) {
	prior := res.RawText
	if res.Payload != nil {
		if b, err := json.Marshal(res.Payload); err == nil {
			prior = string(b)
		}
	}

	prompt := BuildSuggestionsPrompt(resumeText, jobDescription, s.truncate(prior))
	raw, err := s.AI.ChatJSON(ctx, prompt, s.Cfg.ChatMaxTokens)
	if err != nil {
		return "", err
	}

	var sr suggestionsResponse
	if !s.parser.Decode(raw, &sr) {
		observability.LoggerFromContext(ctx).Warn("suggestions response degraded to raw text",
			slog.Int("raw_len", len(raw)))
		return raw, nil
	}
	return renderSuggestions(sr), nil
}

func (s AnalyzerService) truncate(text string) string {
	if s.Cfg.PromptTokenBudget <= 0 || s.counter == nil {
		return text
	}
	return s.counter.Truncate(text, s.Cfg.ChatModel, s.Cfg.PromptTokenBudget)
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
