package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"flamecompanion/internal/config"
	"flamecompanion/internal/pkg/logger"
	"flamecompanion/internal/pkg/storyurl"
	"flamecompanion/internal/repository/postgres"
	"flamecompanion/internal/service/extractor"
	"flamecompanion/internal/service/known"
)

func main() {
	var (
		urlFile = flag.String("file", "", "File with one story URL per line (required)")
		limit   = flag.Int("limit", 0, "Maximum number of stories to process (0 = no limit)")
		delay   = flag.Duration("delay", 2*time.Second, "Delay between story extractions")
		dryRun  = flag.Bool("dry-run", false, "Print what would be done without extracting")
	)
	flag.Parse()

	if *urlFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -file flag is required")
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Setup logging
	log := logger.New(cfg.LogLevel)
	log.Info("Starting story backfill seeder...")
	log.Info("Seeder configuration",
		"file", *urlFile,
		"limit", *limit,
		"delay", *delay,
		"dry_run", *dryRun,
	)

	urls, err := readStoryURLs(*urlFile, *limit, log)
	if err != nil {
		log.Error("Failed to read URL file", "error", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		log.Warn("No valid story URLs found in file")
		return
	}
	log.Info("Loaded story URLs", "count", len(urls))

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database", "error", err)
		os.Exit(1)
	}
	log.Info("Successfully connected to database")

	if err := postgres.RunMigrations(db, log); err != nil {
		log.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// Create repositories and extraction pipeline
	storyRepo := postgres.NewStoryRepository(db, log)
	chapterRepo := postgres.NewChapterRepository(db, log)

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

	orchestrator := extractor.NewOrchestrator(log,
		extractor.NewDynamicExtractor(log),
		extractor.NewStaticExtractor(log),
		extractor.NewHeuristicFallback(log, knownStories),
	)
	upserter := extractor.NewUpserter(storyRepo, chapterRepo, log)
	extractionService := extractor.NewService(orchestrator, upserter, storyRepo, log)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutdown signal received, stopping seeder...")
		cancel()
	}()

	stats := runSeeder(ctx, extractionService, urls, *delay, *dryRun, log)

	log.Info("Seeding completed",
		"urls_processed", stats.Processed,
		"stories_created", stats.Created,
		"stories_updated", stats.Updated,
		"errors", stats.Errors,
	)
}

// SeedingStats tracks statistics for the seeding process
type SeedingStats struct {
	Processed int
	Created   int
	Updated   int
	Errors    int
}

// readStoryURLs reads story URLs from a file, one per line. Blank lines
// and # comments are skipped; invalid URLs are logged and dropped.
func readStoryURLs(path string, limit int, log *slog.Logger) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !storyurl.IsStory(line) {
			log.Warn("Skipping line that is not a story URL", "line", line)
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		urls = append(urls, line)

		if limit > 0 && len(urls) >= limit {
			break
		}
	}
	return urls, scanner.Err()
}

// runSeeder extracts each story sequentially, pausing between requests
func runSeeder(
	ctx context.Context,
	service *extractor.Service,
	urls []string,
	delay time.Duration,
	dryRun bool,
	log *slog.Logger,
) *SeedingStats {
	stats := &SeedingStats{}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	for _, url := range urls {
		if err := limiter.Wait(ctx); err != nil {
			log.Warn("Context cancelled, stopping seeder")
			return stats
		}

		stats.Processed++

		if dryRun {
			log.Info("[DRY RUN] Would extract story", "url", url)
			continue
		}

		outcome, err := service.ExtractStory(ctx, url, false)
		if err != nil {
			log.Error("Failed to extract story", "error", err, "url", url)
			stats.Errors++
			continue
		}

		if outcome.StoryCreated {
			stats.Created++
		} else {
			stats.Updated++
		}

		log.Info("Story seeded",
			"url", url,
			"story_id", outcome.Story.ID,
			"title", outcome.Story.Title,
			"chapters", outcome.ChaptersTotal,
			"strategy", outcome.StrategyUsed,
		)
	}

	return stats
}
