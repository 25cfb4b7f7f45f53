// File: cmd/app/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"paper-assistant/internal/config"
	aiAdapters "paper-assistant/internal/infra/adapters/ai"
	"paper-assistant/internal/infra/adapters/pdf"
	pg "paper-assistant/internal/infra/db/postgres"
	"paper-assistant/internal/infra/logging"
	"paper-assistant/internal/infra/metrics"
	red "paper-assistant/internal/infra/redis"
	"paper-assistant/internal/infra/sched"
	"paper-assistant/internal/infra/web"
	"paper-assistant/internal/infra/worker"
	"paper-assistant/internal/ratelimit"
	"paper-assistant/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	resultCache := red.NewResultCache(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	typoQueue := pg.NewTypoCheckQueueRepo(pool, tm)
	extractionQueue := pg.NewExtractionQueueRepo(pool, tm)
	typoResults := pg.NewTypoResultRepo(pool)
	pageRepo := pg.NewPageRepo(pool, tm)

	// ---- Correctors ----
	bucket := ratelimit.NewBucket(cfg.AI.RatePerSec, time.Second)
	gemini, err := aiAdapters.NewGeminiCorrector(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel, cfg.AI.SystemPrompt)
	if err != nil {
		logger.Fatal().Err(err).Msg("gemini corrector init failed")
	}
	registry := aiAdapters.NewRegistry(
		aiAdapters.NewLimitedCorrector(aiAdapters.NewClaudeCorrector(cfg.AI.ClaudeKey, cfg.AI.ClaudeModel, cfg.AI.SystemPrompt), bucket),
		aiAdapters.NewLimitedCorrector(aiAdapters.NewOpenAICorrector(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel, cfg.AI.SystemPrompt), bucket),
		aiAdapters.NewLimitedCorrector(gemini, bucket),
	)
	for _, p := range registry.Providers() {
		logger.Info().Str("provider", p.Name).Bool("available", p.Available).Msg("corrector registered")
	}

	// ---- Pipelines and pollers ----
	extractor := pdf.NewPdfcpuExtractor(logger)
	typoPipeline := worker.NewTypoCheckPipeline(
		typoQueue, typoResults, resultCache, registry,
		cfg.Typo.ChunkSize, cfg.Typo.TruncationRatio, cfg.Queue.StaleAfter, logger)
	extractionPipeline := worker.NewExtractionPipeline(
		extractionQueue, pageRepo, extractor,
		cfg.Extraction.StorageDir, cfg.Queue.StaleAfter, logger)

	typoPoller := sched.NewPoller(typoPipeline, cfg.Queue.PollInterval, cfg.Queue.MaxIdleChecks, logger)
	extractionPoller := sched.NewPoller(extractionPipeline, cfg.Queue.PollInterval, cfg.Queue.MaxIdleChecks, logger)
	typoPoller.Start(ctx)
	extractionPoller.Start(ctx)

	// ---- Use cases ----
	typoUC := usecase.NewTypoCheckUseCase(typoQueue, typoResults, resultCache, typoPoller, logger)
	extractionUC := usecase.NewExtractionUseCase(extractionQueue, pageRepo, extractionPoller, logger)

	// ---- HTTP ----
	server := web.NewServer(cfg.Server.Port, typoUC, extractionUC, registry, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	typoPoller.Shutdown()
	extractionPoller.Shutdown()
	cancel()
	logger.Info().Msg("bye")
}
