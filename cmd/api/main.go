package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"medimind/internal/config"
	"medimind/internal/history"
	"medimind/internal/llm"
	"medimind/internal/logger"
	"medimind/internal/report"
	"medimind/internal/server"
	"medimind/internal/triage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("medimind: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = zl.Sync() }()

	client, err := newClient(context.Background(), cfg.Model)
	if err != nil {
		return fmt.Errorf("init model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if cfg.Model.RPS > 0 {
		client = llm.Wrap(client, llm.RateLimit(cfg.Model.RPS, cfg.Model.Burst))
	}

	svc, err := triage.New(client, zl, triage.Options{
		SimpleTimeout:   cfg.Model.SimpleTimeout,
		DetailedTimeout: cfg.Model.DetailedTimeout,
		ChatTimeout:     cfg.Model.ChatTimeout,
		RetryAttempts:   cfg.Model.RetryAttempts,
		RetryBackoff:    cfg.Model.RetryBackoff,
	})
	if err != nil {
		return err
	}

	hist, err := history.New(cfg.Database.DSN)
	if err != nil {
		zl.Warn("history store disabled", zap.Error(err))
	}
	defer func() { _ = hist.Close() }()

	var reports *report.S3Store
	if cfg.Artifact.Enabled {
		reports, err = report.NewS3Store(report.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			zl.Warn("report store disabled", zap.Error(err))
			reports = nil
		}
	}

	h := server.NewHandler(svc, hist, reports, zl)
	srv := server.New(cfg.Port, h.Routes())

	go func() {
		zl.Info("starting api server",
			zap.String("addr", srv.Addr()),
			zap.String("provider", cfg.Model.Provider),
			zap.String("model", cfg.Model.Model),
		)
		if err := srv.Start(); err != nil {
			zl.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newClient(ctx context.Context, cfg config.ModelConfig) (llm.Client, error) {
	switch cfg.Provider {
	case "gemini":
		return llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "openai":
		return llm.NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "fake":
		return llm.NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
