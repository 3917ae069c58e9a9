package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"bizplan/internal/cli"
	"bizplan/internal/config"
	"bizplan/internal/db"
	"bizplan/internal/llm"
	"bizplan/internal/localstore"
	"bizplan/internal/logging"
	"bizplan/internal/repository"
	"bizplan/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The CLI logs to stderr in console form; stdout carries command output.
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := localstore.Open(ctx, cfg.LocalStorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	// The database is optional: without it the builtin catalog serves lookups
	// and catalog import/seed report that storage is not configured.
	var products service.CatalogStore
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.RunMigrations(ctx, pool, logger); err != nil {
			return err
		}
		products = repository.New(pool)
	}

	var ai *llm.Client
	if cfg.AIEnabled() {
		gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			return err
		}
		ai = llm.New(gemini, logger)
	}

	svc := service.New(products, store, ai, logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	return cli.NewRootCmd(&cli.App{Service: svc}).ExecuteContext(ctx)
}
