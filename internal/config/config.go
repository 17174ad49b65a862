package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
// Storage paths default to the process working directory.
type Config struct {
	DatabasePath     string
	ResourcesDir     string
	VideosDir        string
	ExportsDir       string
	DownloadDir      string
	DownloadPrefix   string
	AdminUsername    string
	AdminPassword    string
	LogLevel         string
	BusyTimeoutMS    int
	AcquireRetries   int
	RetryUnitSeconds int
}

func Load() Config {
	return Config{
		DatabasePath:     envOr("DATABASE_PATH", "resources.db"),
		ResourcesDir:     envOr("RESOURCES_DIR", "resources"),
		VideosDir:        envOr("VIDEOS_DIR", "videos"),
		ExportsDir:       envOr("EXPORTS_DIR", "exports"),
		DownloadDir:      envOr("DOWNLOAD_DIR", "."),
		DownloadPrefix:   envOr("DOWNLOAD_PREFIX", "downloaded_"),
		AdminUsername:    envOr("ADMIN_USERNAME", "admin"),
		AdminPassword:    envOr("ADMIN_PASSWORD", "admin123"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		BusyTimeoutMS:    envOrInt("DB_BUSY_TIMEOUT_MS", 30000),
		AcquireRetries:   envOrInt("DB_ACQUIRE_RETRIES", 5),
		RetryUnitSeconds: envOrInt("DB_RETRY_UNIT_SECONDS", 2),
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
