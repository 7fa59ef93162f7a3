package config

import (
	"flag"
	"log"
	"os"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	AdminAPIKey string
	LogLevel    string

	// Optional JSON file with known-story and known-profile seed tables
	KnownSeedsFile string

	// Third-party creator-metrics APIs (optional; channel sync is
	// skipped for a platform whose URL is unset)
	VideoStatsAPIURL string
	VideoStatsAPIKey string
	LiveStatsAPIURL  string
	LiveStatsAPIKey  string
}

func Load() *Config {
	config := &Config{
		Port:     getEnvWithDefault("PORT", "8080"),
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),
	}

	config.KnownSeedsFile = getEnvWithDefault("KNOWN_SEEDS_FILE", "")

	// Required environment variables (for database/redis services)
	config.DatabaseURL = mustGetEnv("DATABASE_URL")
	config.RedisURL = mustGetEnv("REDIS_URL")

	// Optional admin key (only required for the API service)
	config.AdminAPIKey = getEnvWithDefault("ADMIN_API_KEY", "")

	config.VideoStatsAPIURL = getEnvWithDefault("VIDEO_STATS_API_URL", "")
	config.VideoStatsAPIKey = getEnvWithDefault("VIDEO_STATS_API_KEY", "")
	config.LiveStatsAPIURL = getEnvWithDefault("LIVE_STATS_API_URL", "")
	config.LiveStatsAPIKey = getEnvWithDefault("LIVE_STATS_API_KEY", "")

	// Command line flags override environment
	flag.StringVar(&config.Port, "port", config.Port, "Server port")
	flag.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level")
	flag.Parse()

	return config
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Environment variable %s is required", key)
	}
	return value
}

// ValidateForAPI ensures all required fields for the API service are present
func (c *Config) ValidateForAPI() error {
	if c.AdminAPIKey == "" {
		log.Fatalf("Environment variable ADMIN_API_KEY is required for the API service")
	}
	return nil
}

// ValidateForWorker ensures all required fields for the worker service are present
func (c *Config) ValidateForWorker() error {
	// Worker only needs database and Redis
	return nil
}
