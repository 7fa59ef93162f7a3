package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"flamecompanion/internal/config"
	apphttp "flamecompanion/internal/http"
	"flamecompanion/internal/http/handlers"
	"flamecompanion/internal/pkg/logger"
	"flamecompanion/internal/repository/postgres"
	"flamecompanion/internal/repository/redis"
	"flamecompanion/internal/service/api"
	"flamecompanion/internal/service/extractor"
	"flamecompanion/internal/service/known"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Validate API-specific configuration
	if err := cfg.ValidateForAPI(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.New(cfg.LogLevel)
	log.Info("Starting API service...")

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
	storyRepo := postgres.NewStoryRepository(db, log)
	chapterRepo := postgres.NewChapterRepository(db, log)
	channelRepo := postgres.NewChannelRepository(db, log)
	queueRepo := redis.NewQueueRepository(redisClient, log)

	// Load seed tables for the heuristic terminal and the crawler fallback
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
	knownProfiles, err := seedLoader.Profiles()
	if err != nil {
		log.Error("Failed to read known-profile table", "error", err)
		os.Exit(1)
	}

	// Build the extraction pipeline: dynamic, static, heuristic in order
	orchestrator := extractor.NewOrchestrator(log,
		extractor.NewDynamicExtractor(log),
		extractor.NewStaticExtractor(log),
		extractor.NewHeuristicFallback(log, knownStories),
	)
	upserter := extractor.NewUpserter(storyRepo, chapterRepo, log)
	extractionService := extractor.NewService(orchestrator, upserter, storyRepo, log)
	crawler := extractor.NewProfileCrawler(extractionService, log, knownProfiles)

	// Build the HTTP surface
	router := apphttp.NewRouter(
		log,
		cfg.AdminAPIKey,
		handlers.NewHealthHandler(log, db, redisClient),
		handlers.NewStoriesHandler(log, storyRepo, chapterRepo),
		handlers.NewChannelsHandler(log, channelRepo, queueRepo),
		handlers.NewExtractionHandler(log, extractionService, crawler, storyRepo, queueRepo),
	)

	apiService := api.New(cfg, log, router.SetupRoutes())

	// Create a channel to track shutdown completion
	done := make(chan struct{})

	// Start API service in a goroutine
	go func() {
		defer close(done)
		if err := apiService.Start(); err != nil {
			log.Error("API service failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received, stopping API service...")
	case <-done:
		log.Info("API service completed")
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiService.Stop(ctx); err != nil {
		log.Error("Error stopping API service", "error", err)
	}

	log.Info("API service shutdown complete")
}
