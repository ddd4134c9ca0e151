// Package tokencount provides token counting and budgeted truncation for
// prompt inputs.
//
// It uses tiktoken-go, a Go port of OpenAI's tiktoken library. Resume and
// job-description text is truncated to a token budget before being embedded
// into prompts so a long upload cannot blow past the model's context window.
package tokencount

import (
	"strings"
	"sync"

	"log/slog"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token counting for LLM models.
type Counter struct {
	encodingCache map[string]*tiktoken.Tiktoken
	mu            sync.RWMutex
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{
		encodingCache: make(map[string]*tiktoken.Tiktoken),
	}
}

// DefaultCounter is a global token counter instance.
var DefaultCounter = NewCounter()

// getEncodingForModel returns the appropriate tiktoken encoding for a model,
// caching encodings for reuse.
func (c *Counter) getEncodingForModel(model string) (*tiktoken.Tiktoken, error) {
	normalizedModel := normalizeModelName(model)

	c.mu.RLock()
	if enc, ok := c.encodingCache[normalizedModel]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if enc, ok := c.encodingCache[normalizedModel]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(normalizedModel)
	if err != nil {
		// cl100k_base approximates most modern chat models well enough
		// for budgeting purposes.
		slog.Debug("falling back to cl100k_base encoding",
			slog.String("model", model),
			slog.String("normalized", normalizedModel),
			slog.Any("error", err))
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}

	c.encodingCache[normalizedModel] = enc
	return enc, nil
}

// normalizeModelName converts model IDs to tiktoken-compatible names.
// Groq serves Llama-family models whose tokenization tiktoken does not know;
// GPT-4's encoding is the customary stand-in.
func normalizeModelName(model string) string {
	model = strings.ToLower(model)
	if strings.Contains(model, "/") {
		parts := strings.Split(model, "/")
		model = parts[len(parts)-1]
	}
	switch {
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	case strings.Contains(model, "gpt-4"):
		return "gpt-4"
	default:
		return "gpt-4"
	}
}

// CountTokens counts the number of tokens in a text string for a given model.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.getEncodingForModel(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate returns text cut down to at most maxTokens tokens for the given
// model. When the encoder is unavailable it falls back to a ~4 chars/token
// estimate so budgeting still happens.
func (c *Counter) Truncate(text, model string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	enc, err := c.getEncodingForModel(model)
	if err != nil {
		slog.Warn("token encoder unavailable, using character estimate",
			slog.String("model", model),
			slog.Any("error", err))
		limit := maxTokens * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}

// CountTokensDefault uses the default counter to count tokens.
func CountTokensDefault(text, model string) (int, error) {
	return DefaultCounter.CountTokens(text, model)
}

// TruncateDefault uses the default counter to truncate text.
func TruncateDefault(text, model string, maxTokens int) string {
	return DefaultCounter.Truncate(text, model, maxTokens)
}
