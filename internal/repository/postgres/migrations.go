package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations contains all database migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			-- Create stories table; source_url is the natural key
			CREATE TABLE IF NOT EXISTS stories (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				source_url TEXT NOT NULL UNIQUE,
				title VARCHAR(500) NOT NULL,
				author VARCHAR(255) NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				cover_image_url TEXT,
				source VARCHAR(50) NOT NULL,

				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_stories_source
			ON stories(source);

			-- Create chapters table; (story, number) is the natural key
			CREATE TABLE IF NOT EXISTS chapters (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				story_id UUID NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
				number INTEGER NOT NULL CHECK (number >= 1),
				title VARCHAR(500) NOT NULL,
				chapter_url TEXT,

				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE,

				UNIQUE(story_id, number)
			);

			CREATE INDEX IF NOT EXISTS idx_chapters_story
			ON chapters(story_id, number);
		`,
	},
	{
		Version: 2,
		Name:    "tracked_channels",
		SQL: `
			-- Creator channels synced from third-party metrics APIs
			CREATE TABLE IF NOT EXISTS channels (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				platform VARCHAR(20) NOT NULL,
				channel_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,

				subscribers BIGINT NOT NULL DEFAULT 0,
				total_views BIGINT NOT NULL DEFAULT 0,
				video_count BIGINT NOT NULL DEFAULT 0,
				last_sync_at TIMESTAMP WITH TIME ZONE,

				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE,

				UNIQUE(platform, channel_id),
				CHECK (platform IN ('video', 'live'))
			);
		`,
	},
}

// RunMigrations executes all pending database migrations
func RunMigrations(db *sql.DB, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Create migrations table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	logger.Info("Current migration version", "version", currentVersion)

	// Apply pending migrations
	applied := 0
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		logger.Info("Applying migration",
			"version", migration.Version,
			"name", migration.Name,
		)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES ($1, $2)",
			migration.Version, migration.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		applied++
		logger.Info("Migration applied successfully", "version", migration.Version)
	}

	if applied == 0 {
		logger.Info("No migrations to apply - database is up to date")
	} else {
		logger.Info("Database migrations completed", "applied", applied)
	}

	return nil
}

// GetMigrationStatus returns the current migration status
func GetMigrationStatus(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get migration status: %w", err)
	}
	return version, nil
}

// ResetDatabase drops all tables (for testing)
func ResetDatabase(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	logger.Warn("Resetting database - all data will be lost")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	drops := []string{
		"DROP TABLE IF EXISTS chapters CASCADE",
		"DROP TABLE IF EXISTS stories CASCADE",
		"DROP TABLE IF EXISTS channels CASCADE",
		"DROP TABLE IF EXISTS migrations CASCADE",
	}
	for _, stmt := range drops {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	logger.Info("Database reset complete")
	return nil
}
