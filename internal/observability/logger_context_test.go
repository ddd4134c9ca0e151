package observability

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWithLogger_RoundTrip(t *testing.T) {
	t.Parallel()

	lg := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := ContextWithLogger(context.Background(), lg)
	assert.Same(t, lg, LoggerFromContext(ctx))
}

func TestLoggerFromContext_Defaults(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, LoggerFromContext(context.Background()))
	assert.NotNil(t, LoggerFromContext(nil)) //nolint:staticcheck // nil ctx path is part of the contract
}

func TestContextWithLogger_NilLoggerIgnored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, ctx, ContextWithLogger(ctx, nil))
}

func TestRequestID_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := ContextWithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
}

func TestContextWithRequestID_EmptyIgnored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, ctx, ContextWithRequestID(ctx, ""))
}
