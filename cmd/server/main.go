package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"care-companion/internal/config"
	"care-companion/internal/core"
	"care-companion/internal/db"
	httpserver "care-companion/internal/http"
	"care-companion/internal/llm"
	"care-companion/internal/store"
	"care-companion/internal/telemetry"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	openai "github.com/sashabaranov/go-openai"
)

var version = "dev"

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, logFile, err := telemetry.InitLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if cfg.TelemetryEnabled {
		_, _, cleanup, err := telemetry.InitTelemetry(context.Background(), cfg.LogDir, version)
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
		} else {
			defer cleanup()
		}
	}

	client := newLLM(cfg)
	chat := core.NewChatService(client, cfg.GenerationTimeout, logger)
	summarizer := core.NewSummarizer(client, cfg.GenerationTimeout)

	sinks := core.MultiSink{core.LogSink{Logger: logger}}
	var (
		repo     *db.Repository
		notifier *db.Notifier
	)
	if cfg.AlertsEnabled() {
		conn, err := openDatabase(cfg.DatabaseURL)
		if err != nil {
			logger.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		repo = db.NewRepository(conn)
		notifier = db.NewNotifier(repo, cfg.DatabaseURL, cfg.NotifyChannel, logger)
		sinks = append(sinks, notifier)
	}

	companion := core.NewCompanion(core.Config{
		Medications: store.NewMedicationStore(cfg.MedicationsPath),
		Sessions:    store.NewSessionStore(cfg.SessionsPath),
		Chat:        chat,
		Summarizer:  summarizer,
		Alerts:      sinks,
		Logger:      logger,
	})
	if err := companion.Load(); err != nil {
		logger.Warn("stored data could not be read, using defaults", "error", err)
	}

	var (
		alerts httpserver.AlertLister
		stream httpserver.AlertSource
	)
	if repo != nil {
		alerts, stream = repo, notifier
	}
	handler := httpserver.NewServer(companion, alerts, stream, client.Model(), logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: the alert stream is long lived.
		IdleTimeout: 120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("care companion starting", "addr", addr, "backend", cfg.Backend, "model", client.Model(), "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

func newLLM(cfg *config.Config) llm.Client {
	if cfg.Backend == config.BackendAnthropic {
		return llm.NewAnthropicClient(cfg.AnthropicModel, option.WithAPIKey(cfg.AnthropicAPIKey))
	}
	oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}
	return llm.NewOpenAIClient(oc, cfg.OpenAIChatModel, cfg.OpenAISummaryModel)
}

func openDatabase(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := db.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}
