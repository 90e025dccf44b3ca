package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/randomtoy/faas-go/internal/adapters/decks"
	httpadapter "github.com/randomtoy/faas-go/internal/adapters/http"
	"github.com/randomtoy/faas-go/internal/adapters/llm/gemini"
	"github.com/randomtoy/faas-go/internal/adapters/llm/openai"
	"github.com/randomtoy/faas-go/internal/adapters/payment"
	"github.com/randomtoy/faas-go/internal/adapters/store"
	"github.com/randomtoy/faas-go/internal/app"
	"github.com/randomtoy/faas-go/internal/config"
	"github.com/randomtoy/faas-go/internal/ports"
	"github.com/randomtoy/faas-go/internal/prompt"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	deckStore := decks.NewEmbeddedStore()
	deck, err := deckStore.GetDeck(context.Background(), decks.MajorArcana)
	if err != nil {
		logger.Error("failed to load deck", "error", err)
		os.Exit(1)
	}

	fileStore, err := store.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to open data dir", "error", err)
		os.Exit(1)
	}

	profiles, err := app.NewProfileService(fileStore)
	if err != nil {
		logger.Error("failed to load profile", "error", err)
		os.Exit(1)
	}
	history, err := app.NewHistoryService(fileStore)
	if err != nil {
		logger.Error("failed to load history", "error", err)
		os.Exit(1)
	}

	var gen ports.Generator
	switch cfg.LLMProvider {
	case "openai":
		gen = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	default:
		gen = gemini.NewClient(
			&http.Client{Timeout: cfg.LLMTimeout},
			cfg.GeminiAPIKey,
			cfg.GeminiBaseURL,
			logger,
		)
	}

	env := &app.Env{
		Deck:     deck,
		Builder:  prompt.NewBuilder(cfg.ProModel, cfg.FlashModel),
		Gen:      gen,
		RNG:      stdRNG{},
		Profiles: profiles,
		History:  history,
		Payment:  payment.NewSimulated(),
		Logger:   logger,
	}
	sessions := app.NewSessions(env)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))

	handler := httpadapter.NewHandler(sessions, profiles, history, logger)
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
