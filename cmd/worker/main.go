package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"flamecompanion/internal/config"
	"flamecompanion/internal/domain"
	"flamecompanion/internal/pkg/logger"
	"flamecompanion/internal/repository/postgres"
	"flamecompanion/internal/repository/redis"
	"flamecompanion/internal/service/extractor"
	"flamecompanion/internal/service/known"
	"flamecompanion/internal/service/stats"
	"flamecompanion/internal/service/worker"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Validate worker-specific configuration
	if err := cfg.ValidateForWorker(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.New(cfg.LogLevel)
	log.Info("Starting worker service...")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database", "error", err)
		os.Exit(1)
	}

	// Run database migrations
	if err := postgres.RunMigrations(db, log); err != nil {
		log.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Create repositories
	queueRepo := redis.NewQueueRepository(redisClient, log)
	storyRepo := postgres.NewStoryRepository(db, log)
	chapterRepo := postgres.NewChapterRepository(db, log)
	channelRepo := postgres.NewChannelRepository(db, log)

	// Load seed tables for the heuristic terminal
	seedLoader := known.NewLoader(cfg.KnownSeedsFile, log)
	if err := seedLoader.Load(); err != nil {
		log.Error("Failed to load seed tables", "error", err)
		os.Exit(1)
	}
	knownStories, err := seedLoader.Stories()
	if err != nil {
		log.Error("Failed to read known-story table", "error", err)
		os.Exit(1)
	}

	// Build the extraction pipeline used by chapter-check jobs
	orchestrator := extractor.NewOrchestrator(log,
		extractor.NewDynamicExtractor(log),
		extractor.NewStaticExtractor(log),
		extractor.NewHeuristicFallback(log, knownStories),
	)
	upserter := extractor.NewUpserter(storyRepo, chapterRepo, log)
	extractionService := extractor.NewService(orchestrator, upserter, storyRepo, log)

	// Channel stats syncer used by channel-sync jobs
	statsSyncer := stats.NewSyncer(channelRepo, log, map[string]stats.Endpoint{
		domain.PlatformVideo: {URL: cfg.VideoStatsAPIURL, APIKey: cfg.VideoStatsAPIKey},
		domain.PlatformLive:  {URL: cfg.LiveStatsAPIURL, APIKey: cfg.LiveStatsAPIKey},
	})

	processor := worker.NewJobProcessor(log, extractionService, statsSyncer)
	workerService := worker.New(cfg, log, queueRepo, processor)

	// Create a channel to track shutdown completion
	done := make(chan struct{})

	// Start worker service in a goroutine
	go func() {
		defer close(done)
		if err := workerService.Start(); err != nil {
			log.Error("Worker service failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received, stopping worker service...")
	case <-done:
		log.Info("Worker service completed")
	}

	if err := workerService.Stop(); err != nil {
		log.Error("Error stopping worker service", "error", err)
	}

	log.Info("Worker service shutdown complete")
}
