package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port               int
	DataDir            string
	CacheDir           string
	FFmpegPath         string
	APIToken           string
	Threads            int
	WorkspaceRetention time.Duration
}

func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "7890"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	threads, err := strconv.Atoi(getEnv("THREADS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid THREADS: %w", err)
	}
	if threads < 0 {
		return nil, fmt.Errorf("invalid THREADS: %d is negative", threads)
	}

	retentionHours, err := strconv.Atoi(getEnv("WORKSPACE_RETENTION_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKSPACE_RETENTION_HOURS: %w", err)
	}
	if retentionHours <= 0 {
		return nil, fmt.Errorf("invalid WORKSPACE_RETENTION_HOURS: %d must be positive", retentionHours)
	}

	apiToken := os.Getenv("API_TOKEN")
	if apiToken == "" {
		return nil, fmt.Errorf("API_TOKEN is required")
	}

	dataDir := getEnv("DATA_DIR", "/data")

	return &Config{
		Port:               port,
		DataDir:            dataDir,
		CacheDir:           getEnv("CACHE_DIR", filepath.Join(dataDir, "cache")),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		APIToken:           apiToken,
		Threads:            threads,
		WorkspaceRetention: time.Duration(retentionHours) * time.Hour,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
