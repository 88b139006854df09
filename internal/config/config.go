package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Search
	SearchArtifact    string
	SearchResultLimit int
	SnippetSize       int
	SnippetMargin     int
	StatsWindow       time.Duration

	// Auth
	SearchAPIKey string

	// Reindexing; empty SiteConfig disables it
	SiteConfig string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		SearchArtifact:    envOr("SEARCH_ARTIFACT", "search.json"),
		SearchResultLimit: envInt("SEARCH_RESULT_LIMIT", 10),
		SnippetSize:       envInt("SNIPPET_SIZE", 100),
		SnippetMargin:     envInt("SNIPPET_MARGIN", 10),
		StatsWindow:       envDuration("SEARCH_STATS_WINDOW", 1*time.Hour),

		SearchAPIKey: os.Getenv("SEARCH_API_KEY"),

		SiteConfig: os.Getenv("SITE_CONFIG"),

		WorkerCount:  envInt("WORKER_COUNT", 1),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 8),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.SearchResultLimit <= 0 {
		cfg.SearchResultLimit = 10
	}
	if cfg.SnippetSize <= 0 {
		cfg.SnippetSize = 100
	}
	if cfg.SnippetMargin <= 0 {
		cfg.SnippetMargin = 10
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 8
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.SearchAPIKey == "" {
		return fmt.Errorf("SEARCH_API_KEY is required")
	}
	if c.SearchArtifact == "" {
		return fmt.Errorf("SEARCH_ARTIFACT is required")
	}
	if c.SnippetMargin >= c.SnippetSize {
		return fmt.Errorf("SNIPPET_MARGIN (%d) must be smaller than SNIPPET_SIZE (%d)", c.SnippetMargin, c.SnippetSize)
	}
	return nil
}

// ReindexEnabled reports whether a crawl config was provided.
func (c Config) ReindexEnabled() bool { return c.SiteConfig != "" }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
