package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/ai"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/analysis"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/api"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/config"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/db"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/solicitation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	aiClient := ai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.EmbedModel, logger)

	store := db.NewStore(pool)
	fetcher := solicitation.NewFetcher(logger)
	pipeline := analysis.NewPipeline(aiClient, store, fetcher, logger)

	server := api.NewServer(pool, pipeline, aiClient, cfg.AdminSecret, logger)

	logger.Info("starting server", zap.Int("port", cfg.Port))
	if err := server.Start(cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
