package httpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"log/slog"

	"github.com/fairyhunter13/resume-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/resume-evaluator/internal/config"
	"github.com/fairyhunter13/resume-evaluator/internal/domain"
	"github.com/fairyhunter13/resume-evaluator/internal/usecase"
	"github.com/fairyhunter13/resume-evaluator/pkg/textx"
)

// Evaluator runs one full evaluation; satisfied by usecase.AnalyzerService.
type Evaluator interface {
	Analyze(ctx context.Context, in usecase.AnalyzeInput) (domain.Evaluation, error)
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg       config.Config
	Analyzer  Evaluator
	Extractor domain.TextExtractor
	AICheck   func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, analyzer Evaluator, extractor domain.TextExtractor, aiCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Analyzer: analyzer, Extractor: extractor, AICheck: aiCheck}
}

const (
	defaultCompanyName = "Unknown Company"
	defaultRoleName    = "Unspecified Role"
)

// allowedExt enforces an allowlist for resume uploads: .txt, .pdf, .docx
func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

func allowedMIMEFor(m, filename string) bool {
	m = strings.ToLower(m)
	// For .txt files, accept any text/* as some detectors misclassify rich text.
	if strings.HasSuffix(strings.ToLower(filename), ".txt") && strings.HasPrefix(m, "text/") {
		return true
	}
	if strings.HasPrefix(m, "text/plain") { // allow parameters such as charset
		return true
	}
	return m == "application/pdf" || m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

type evaluateRequest struct {
	ResumeText     string `validate:"omitempty,max=20000"`
	JobDescription string `validate:"required,max=20000"`
	CompanyName    string `validate:"max=200"`
	RoleName       string `validate:"max=200"`
}

// EvaluateHandler accepts a multipart form holding a resume (as an uploaded
// "resume" file or an inline "resume_text" field) plus the job description,
// runs the evaluation pipeline, and returns the full evaluation document.
func (s *Server) EvaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a := r.Header.Get("Accept"); a != "" && a != "*/*" && !strings.Contains(a, "application/json") {
			writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]any{"accept": a},
			}})
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}

		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		resumeText, err := s.resumeText(r)
		if err != nil {
			writeError(w, r, err, map[string]string{"field": "resume"})
			return
		}

		req := evaluateRequest{
			ResumeText:     resumeText,
			JobDescription: textx.SanitizeText(r.FormValue("job_description")),
			CompanyName:    strings.TrimSpace(r.FormValue("company_name")),
			RoleName:       strings.TrimSpace(r.FormValue("role_name")),
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			if ve, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		if req.ResumeText == "" {
			writeError(w, r, fmt.Errorf("%w: resume file or resume_text required", domain.ErrInvalidArgument), map[string]string{"field": "resume"})
			return
		}
		if req.CompanyName == "" {
			req.CompanyName = defaultCompanyName
		}
		if req.RoleName == "" {
			req.RoleName = defaultRoleName
		}

		ev, err := s.Analyzer.Analyze(r.Context(), usecase.AnalyzeInput{
			ResumeText:     req.ResumeText,
			JobDescription: req.JobDescription,
			CompanyName:    req.CompanyName,
			RoleName:       req.RoleName,
		})
		if err != nil {
			observability.ObserveEvaluation("failed", 0, 0)
			LoggerFrom(r).Error("evaluation failed", slog.Any("error", err))
			writeError(w, r, err, nil)
			return
		}

		outcome := "ok"
		if ev.Result.Payload == nil {
			outcome = "degraded"
		}
		observability.ObserveEvaluation(outcome, ev.Metrics.MatchPercentage, ev.Metrics.Keywords.Overall.Percentage)
		LoggerFrom(r).Info("evaluation completed",
			slog.String("evaluation_id", ev.ID),
			slog.Int("match_percentage", ev.Metrics.MatchPercentage))
		writeJSON(w, http.StatusOK, ev)
	}
}

// resumeText resolves the resume body: an uploaded file wins over the
// inline field. Extraction failures carry the domain sentinel so the
// status mapping distinguishes them from plain bad requests.
func (s *Server) resumeText(r *http.Request) (string, error) {
	file, header, err := r.FormFile("resume")
	if err != nil {
		// No file part; fall back to the inline field.
		return textx.SanitizeText(r.FormValue("resume_text")), nil
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("%w: resume read: %v", domain.ErrInvalidArgument, err)
	}
	if !allowedExt(header.Filename) {
		return "", fmt.Errorf("%w: unsupported resume extension %q", domain.ErrInvalidArgument, header.Filename)
	}
	if m := mimetype.Detect(data); !allowedMIMEFor(m.String(), header.Filename) {
		return "", fmt.Errorf("%w: unsupported resume content type %q", domain.ErrInvalidArgument, m.String())
	}
	return s.Extractor.Extract(r.Context(), header.Filename, data)
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

// ReadyzHandler probes the model backend configuration.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make([]check, 0, 1)
		if s.AICheck != nil {
			if err := s.AICheck(r.Context()); err != nil {
				checks = append(checks, check{Name: "ai", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "ai", OK: true})
			}
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
