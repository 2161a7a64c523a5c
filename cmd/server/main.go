package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"argo-chat/internal/config"
	"argo-chat/internal/handlers"
	"argo-chat/internal/middleware"
	"argo-chat/internal/router"
	"argo-chat/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	setupLogging(cfg)
	log.Info().Str("env", cfg.Env).Msg("Starting ARGO chat relay")

	if cfg.GoogleAPIKey == "" {
		log.Warn().Msg("GOOGLE_API_KEY is not set; relay endpoints will answer 500")
	}

	// ──── Step 2: Initialize Gemini Model Factory ────
	gemini := services.NewGeminiService(cfg.GeminiModel, cfg.GeminiMaxOutputTokens)
	lister := services.NewModelLister(cfg.GeminiBaseURL)
	log.Info().
		Str("model", gemini.ModelName()).
		Int("max_output_tokens", cfg.GeminiMaxOutputTokens).
		Dur("timeout", cfg.RelayTimeout).
		Msg("✓ Gemini relay configured")

	// ──── Step 3: Initialize Handlers ────
	relayCfg := handlers.RelayConfig{
		APIKey:  cfg.GoogleAPIKey,
		Timeout: cfg.RelayTimeout,
	}
	chatHandler := handlers.NewChatHandler(relayCfg, gemini)
	modelsHandler := handlers.NewModelsHandler(relayCfg, lister)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Close()

	// ──── Step 4: Start HTTP Server ────
	r := router.New(chatHandler, modelsHandler, limiter, cfg.FrontendURL)

	// WriteTimeout must outlast the model call
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RelayTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info().Msgf("✓ ARGO chat relay ready on http://localhost:%s", cfg.Port)
	log.Info().Msgf("  Chat:   POST http://localhost:%s/api/general-chat", cfg.Port)
	log.Info().Msgf("  Models: GET  http://localhost:%s/api/list-models", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server error")
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
