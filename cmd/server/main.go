// Command server starts the resume evaluator HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairyhunter13/resume-evaluator/internal/adapter/ai/groq"
	"github.com/fairyhunter13/resume-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/resume-evaluator/internal/adapter/textextractor/local"
	"github.com/fairyhunter13/resume-evaluator/internal/app"
	"github.com/fairyhunter13/resume-evaluator/internal/config"
	"github.com/fairyhunter13/resume-evaluator/internal/domain"
	"github.com/fairyhunter13/resume-evaluator/internal/usecase"

	httpserver "github.com/fairyhunter13/resume-evaluator/internal/adapter/httpserver"
)

func main() {
	// Best-effort .env load for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so /metrics exposes
	// HTTP, AI, and evaluation instrumentation.
	observability.InitMetrics()

	criteria, err := config.LoadCriteria(cfg)
	if err != nil {
		slog.Error("criteria load failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("evaluation criteria loaded", slog.Int("count", len(criteria)))

	aiClient, err := groq.New(cfg)
	if err != nil {
		slog.Error("ai client init failed", slog.Any("error", err))
		os.Exit(1)
	}

	analyzer := usecase.NewAnalyzerService(aiClient, criteria, cfg)
	extractor := local.New()

	aiCheck := func(context.Context) error {
		if cfg.GroqAPIKey == "" {
			return fmt.Errorf("%w: GROQ_API_KEY missing", domain.ErrConfiguration)
		}
		return nil
	}

	srv := httpserver.NewServer(cfg, analyzer, extractor, aiCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
