// Package main is the entry point for the infection session simulator.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samdwyer/infection/internal/config"
	"github.com/samdwyer/infection/internal/game"
	"github.com/samdwyer/infection/internal/status"
	"github.com/samdwyer/infection/internal/telemetry"
)

func main() {
	// Load .env file for local development
	// This makes HONEYCOMB_INFECTION_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	// Set up OTEL environment variables from our .env variables
	setupOTelEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := uuid.New()
	logger = logger.With(zap.String("session", session.String()))

	// Initialize telemetry
	shutdown, err := telemetry.Setup(ctx, session.String())
	if err != nil {
		logger.Warn("telemetry setup failed, running without observability", zap.Error(err))
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	g, err := game.New(cfg, session, logger)
	if err != nil {
		logger.Fatal("failed to initialize game", zap.Error(err))
	}

	if cfg.StatusAddr != "" {
		go func() {
			if err := status.Serve(ctx, cfg.StatusAddr, g, logger.Named("status")); err != nil {
				logger.Error("status api failed", zap.Error(err))
			}
		}()
	}

	if err := g.Run(ctx); err != nil {
		logger.Fatal("game error", zap.Error(err))
	}
}

// newLogger writes to stderr when headless and to the log file otherwise, so
// the dashboard is not overwritten.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if !cfg.Headless {
		zc = zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zc.Build()
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	// Always set endpoint to Honeycomb
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")

	// Always set headers from our API key - the .env file may have an unexpanded
	// variable reference that doesn't work, so we construct it properly here
	apiKey := os.Getenv("HONEYCOMB_INFECTION_API_KEY")
	dataset := os.Getenv("HONEYCOMB_INFECTION_DATASET")
	if dataset == "" {
		dataset = "infection" // default dataset name
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
