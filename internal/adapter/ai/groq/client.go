// Package groq implements the AI gateway against the Groq OpenAI-compatible
// chat completions API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"log/slog"

	"github.com/fairyhunter13/resume-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/resume-evaluator/internal/config"
	"github.com/fairyhunter13/resume-evaluator/internal/domain"
)

// Client implements domain.AIClient against Groq. One call is one
// synchronous request/response; retries with backoff happen inside the call,
// streaming and caching do not exist here.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

var errRateLimited = errors.New("rate limited: 429")

// New constructs a Groq client. The API credential is required at
// construction time; a missing credential is a configuration error surfaced
// immediately, before any request is attempted.
func New(cfg config.Config) (*Client, error) {
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("%w: GROQ_API_KEY missing", domain.ErrConfiguration)
	}
	timeout := cfg.ChatTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{cfg: cfg, hc: &http.Client{Timeout: timeout}}, nil
}

// getBackoffConfig returns a configured ExponentialBackOff based on the current environment.
func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()

	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier

	return expo
}

// ChatJSON posts one chat completion and returns the first choice's content.
// 429 and 5xx responses are retried with exponential backoff until the
// configured elapsed budget runs out; other 4xx responses fail permanently.
func (c *Client) ChatJSON(ctx domain.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.cfg.ChatMaxTokens
	}
	body := map[string]any{
		"model":       c.cfg.ChatModel,
		"temperature": c.cfg.ChatTemperature,
		"max_tokens":  maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	b, _ := json.Marshal(body)

	var out struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	rateLimited := false
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GroqBaseURL+"/chat/completions", bytes.NewReader(b))
		r.Header.Set("Authorization", "Bearer "+c.cfg.GroqAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues("groq", "chat").Inc()
		observability.AIRequestDuration.WithLabelValues("groq", "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			slog.Error("failed to read response body", slog.String("provider", "groq"), slog.Any("error", err))
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			// Retryable: let backoff handle retries
			rateLimited = true
			slog.Warn("ai provider rate limited", slog.String("provider", "groq"), slog.String("op", "chat"), slog.Int("status", resp.StatusCode), slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return errRateLimited
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client error: non-retryable
			slog.Warn("ai provider 4xx", slog.String("provider", "groq"), slog.String("op", "chat"), slog.Int("status", resp.StatusCode), slog.String("model", c.cfg.ChatModel), slog.String("body", snippet(bodyBytes)))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// 5xx and others: retryable
			slog.Error("ai provider non-2xx", slog.String("provider", "groq"), slog.String("op", "chat"), slog.Int("status", resp.StatusCode), slog.String("model", c.cfg.ChatModel), slog.String("body", snippet(bodyBytes)))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			slog.Error("ai provider decode error", slog.String("provider", "groq"), slog.String("op", "chat"), slog.Any("error", err))
			return err
		}
		return nil
	}

	expo := c.getBackoffConfig()
	bo := backoff.WithContext(expo, ctx)
	if err := backoff.Retry(op, bo); err != nil {
		slog.Error("groq api failed after retries", slog.String("provider", "groq"), slog.String("model", c.cfg.ChatModel), slog.Any("error", err))
		return "", classify(ctx, err, rateLimited)
	}

	if len(out.Choices) == 0 {
		slog.Error("groq api returned empty choices", slog.String("provider", "groq"), slog.String("model", c.cfg.ChatModel))
		return "", fmt.Errorf("%w: empty choices", domain.ErrUpstream)
	}
	return out.Choices[0].Message.Content, nil
}

// classify maps an exhausted retry loop onto the domain error taxonomy so
// handlers can pick a response status without string matching.
func classify(ctx context.Context, err error, rateLimited bool) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	case rateLimited && errors.Is(err, errRateLimited):
		return fmt.Errorf("%w: retries exhausted", domain.ErrUpstreamRateLimit)
	default:
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
}

func snippet(b []byte) string {
	if len(b) > 512 {
		b = b[:512]
	}
	return string(b)
}
