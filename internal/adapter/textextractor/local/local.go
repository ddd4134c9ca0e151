// Package local implements resume text extraction with in-process parsers,
// no external extraction service required.
package local

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/fairyhunter13/resume-evaluator/internal/domain"
	"github.com/fairyhunter13/resume-evaluator/pkg/textx"
)

// Extractor implements domain.TextExtractor for PDF, DOCX, and plain text.
type Extractor struct{}

// New constructs a local extractor.
func New() *Extractor { return &Extractor{} }

// Extract dispatches on the file extension, falling back to MIME sniffing
// when the name carries no usable extension. Any parser failure or empty
// output surfaces as domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx domain.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file %q", domain.ErrExtractionFailed, filename)
	}

	kind := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if kind == "" {
		kind = sniffKind(data)
	}

	var (
		text string
		err  error
	)
	switch kind {
	case "pdf":
		// PDF extraction leaves ragged whitespace between text runs.
		text, err = extractPDF(data)
		text = textx.CleanText(text)
	case "docx":
		text, err = extractDocx(data)
	default:
		text = textx.SanitizeText(string(data))
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text content in %q", domain.ErrExtractionFailed, filename)
	}
	return text, nil
}

func sniffKind(data []byte) string {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/pdf"):
		return "pdf"
	case mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return "docx"
	default:
		return "txt"
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Unreadable pages are skipped rather than failing the whole file.
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func extractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = doc.Close() }()
	return doc.Editable().GetContent(), nil
}
