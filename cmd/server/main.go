package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "dupfinder/docs"
	"dupfinder/internal/app"
	"dupfinder/internal/config"
	"dupfinder/internal/handlers"
	"dupfinder/internal/server"
)

// @title Duplicate Ticket Finder API
// @version 1.0
// @description Finds existing tickets similar to a new issue and learns from feedback.
// @BasePath /
func main() {
	cfg := config.Load()
	logger := cfg.SetupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close resources")
		}
	}()

	if count, err := a.Service.Count(ctx); err != nil {
		logger.Warn().Err(err).Msg("Could not count stored tickets")
	} else {
		logger.Info().Str("backend", cfg.StoreBackend).Int("tickets", count).Msg("Ticket store ready")
	}

	if err := a.CheckProviders(ctx); err != nil {
		logger.Warn().Err(err).Msg("Model provider check failed; searches will fail until it recovers")
	}

	go a.Service.RunSessionJanitor(ctx, time.Minute)

	var summaries handlers.SummaryProvider
	if a.Analytics != nil {
		summaries = a.Analytics
	}

	srv := server.New(cfg, a.Service, summaries, logger)
	srv.Initialize()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
