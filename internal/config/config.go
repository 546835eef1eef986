package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/log"
)

type Config struct {
	// Database
	DBPath string

	// Logging
	LogLevel string

	// Reports
	Currency        string
	ReportCacheSize int
	ReportCacheTTL  time.Duration

	// Charts
	ChartWidth  int
	ChartHeight int
}

func Load() *Config {
	return &Config{
		DBPath:   getEnv("FINTRACK_DB_PATH", "./data/finance.db"),
		LogLevel: getEnv("FINTRACK_LOG_LEVEL", "info"),

		Currency:        getEnv("FINTRACK_CURRENCY", "EUR"),
		ReportCacheSize: getEnvInt("FINTRACK_REPORT_CACHE_SIZE", 64),
		ReportCacheTTL:  getEnvDuration("FINTRACK_REPORT_CACHE_TTL", 5*time.Minute),

		ChartWidth:  getEnvInt("FINTRACK_CHART_WIDTH", 1200),
		ChartHeight: getEnvInt("FINTRACK_CHART_HEIGHT", 600),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.DBPath) == "" {
		errors = append(errors, "database path cannot be empty")
	} else {
		dir := filepath.Dir(c.DBPath)
		if dir != "." && dir != "" {
			if info, err := os.Stat(dir); err == nil && !info.IsDir() {
				errors = append(errors, fmt.Sprintf("database directory '%s' is not a directory", dir))
			}
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if l := len(c.Currency); l < 1 || l > 8 {
		errors = append(errors, fmt.Sprintf("invalid currency '%s': must be 1 to 8 characters", c.Currency))
	}

	if c.ReportCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must not be negative", c.ReportCacheSize))
	} else if c.ReportCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must be at most 10000", c.ReportCacheSize))
	}

	if c.ReportCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid report cache ttl %v: must be at least 1 second", c.ReportCacheTTL))
	} else if c.ReportCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid report cache ttl %v: must be at most 24 hours", c.ReportCacheTTL))
	}

	if c.ChartWidth < 200 || c.ChartWidth > 8000 {
		errors = append(errors, fmt.Sprintf("invalid chart width %d: must be between 200 and 8000", c.ChartWidth))
	}
	if c.ChartHeight < 150 || c.ChartHeight > 8000 {
		errors = append(errors, fmt.Sprintf("invalid chart height %d: must be between 150 and 8000", c.ChartHeight))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
