package groq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-evaluator/internal/config"
	"github.com/fairyhunter13/resume-evaluator/internal/domain"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:          "test",
		GroqAPIKey:      "test-key",
		GroqBaseURL:     baseURL,
		ChatModel:       "llama3-70b-8192",
		ChatTemperature: 0.2,
		ChatMaxTokens:   1024,
		ChatTimeout:     5 * time.Second,
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	t.Parallel()

	_, err := New(config.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestChatJSON_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3-70b-8192","choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	got, err := c.ChatJSON(context.Background(), "evaluate this", 256)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, got)
}

func TestChatJSON_RetriesServerErrorThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	got, err := c.ChatJSON(context.Background(), "p", 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestChatJSON_PermanentClientError(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.ChatJSON(context.Background(), "p", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}

func TestChatJSON_RateLimitExhaustion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.ChatJSON(context.Background(), "p", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamRateLimit)
}

func TestChatJSON_ContextDeadline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = c.ChatJSON(ctx, "p", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestChatJSON_EmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.ChatJSON(context.Background(), "p", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
