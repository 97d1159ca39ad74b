package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evertl/reelpilot/config"
	"github.com/evertl/reelpilot/internal/adapter/fcphost"
	"github.com/evertl/reelpilot/internal/adapter/ffmpeg"
	"github.com/evertl/reelpilot/internal/adapter/genai"
	"github.com/evertl/reelpilot/internal/adapter/httpapi"
	"github.com/evertl/reelpilot/internal/adapter/sidecar"
	sqlitestore "github.com/evertl/reelpilot/internal/adapter/storage/sqlite"
	"github.com/evertl/reelpilot/internal/infrastructure/logger"
	"github.com/evertl/reelpilot/internal/retry"
	"github.com/evertl/reelpilot/internal/service"
	"github.com/evertl/reelpilot/internal/timeline"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	if os.Getenv("DEBUG") != "" {
		logger.EnableDebug()
	}

	logger.Info.Printf("starting reelpilot %s on port %d", version, cfg.Port)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error.Printf("failed to create data directory: %v", err)
		os.Exit(1)
	}

	history, err := sqlitestore.NewHistory(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to open job history: %v", err)
		os.Exit(1)
	}
	defer func() { _ = history.Close() }()

	eventBus := service.NewEventBus()
	registry := service.NewRegistry(service.GoRunner{}, history, eventBus)

	prober := ffmpeg.NewProber()
	encoder := ffmpeg.NewEncoder(prober, cfg.ProxyMaxBytes, cfg.ProxyMaxLongEdge)
	analysis := genai.NewClient(cfg.AnalysisBaseURL, cfg.AnalysisAPIKey, cfg.AnalysisModel)
	host := fcphost.NewHost(cfg.EditHostImportDir)
	exec := retry.NewExecutor(cfg.RetryMaxRetries, cfg.RetryBaseDelay, cfg.RetryMaxDelay, nil)

	orchestrator := service.NewOrchestrator(
		registry,
		sidecar.NewStore(),
		prober,
		encoder,
		analysis,
		host,
		exec,
		timeline.Options{TargetFPS: cfg.TargetFPS, HFRThreshold: cfg.HFRThreshold},
		cfg.TranscodeWorkers,
	)

	server := httpapi.NewServer(cfg.Port, httpapi.RouterConfig{
		Pipeline:  orchestrator,
		History:   history,
		EventBus:  eventBus,
		APIToken:  cfg.APIToken,
		Version:   version,
		StartTime: time.Now(),
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}
	}()

	if err := server.Start(); err != nil {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
	logger.Info.Printf("shutdown complete")
}
