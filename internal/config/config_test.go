package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DBPath:          "./test.db",
		LogLevel:        "info",
		Currency:        "EUR",
		ReportCacheSize: 64,
		ReportCacheTTL:  5 * time.Minute,
		ChartWidth:      1200,
		ChartHeight:     600,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "cache disabled",
			modify:  func(c *Config) { c.ReportCacheSize = 0 },
			wantErr: false,
		},
		{
			name:        "empty database path",
			modify:      func(c *Config) { c.DBPath = " " },
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name:        "unknown log level",
			modify:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "empty currency",
			modify:      func(c *Config) { c.Currency = "" },
			wantErr:     true,
			errorString: "invalid currency ''",
		},
		{
			name:        "negative cache size",
			modify:      func(c *Config) { c.ReportCacheSize = -1 },
			wantErr:     true,
			errorString: "invalid report cache size -1: must not be negative",
		},
		{
			name:        "cache size too large",
			modify:      func(c *Config) { c.ReportCacheSize = 20000 },
			wantErr:     true,
			errorString: "invalid report cache size 20000: must be at most 10000",
		},
		{
			name:        "cache ttl too short",
			modify:      func(c *Config) { c.ReportCacheTTL = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid report cache ttl 500ms: must be at least 1 second",
		},
		{
			name:        "cache ttl too long",
			modify:      func(c *Config) { c.ReportCacheTTL = 25 * time.Hour },
			wantErr:     true,
			errorString: "invalid report cache ttl 25h0m0s: must be at most 24 hours",
		},
		{
			name:        "chart too narrow",
			modify:      func(c *Config) { c.ChartWidth = 10 },
			wantErr:     true,
			errorString: "invalid chart width 10",
		},
		{
			name:        "chart too tall",
			modify:      func(c *Config) { c.ChartHeight = 9000 },
			wantErr:     true,
			errorString: "invalid chart height 9000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "loud"
	cfg.ChartWidth = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"invalid log level", "invalid chart width"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestConfig_ValidateDatabaseDirIsFile(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "plain")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	cfg := validConfig()
	cfg.DBPath = filepath.Join(file, "finance.db")
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "is not a directory") {
		t.Errorf("Config.Validate() error = %v, want directory error", err)
	}
}

func TestLoad(t *testing.T) {
	keys := []string{
		"FINTRACK_DB_PATH",
		"FINTRACK_LOG_LEVEL",
		"FINTRACK_CURRENCY",
		"FINTRACK_REPORT_CACHE_SIZE",
		"FINTRACK_REPORT_CACHE_TTL",
		"FINTRACK_CHART_WIDTH",
		"FINTRACK_CHART_HEIGHT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.DBPath != "./data/finance.db" {
			t.Errorf("Load() DBPath = %v, want ./data/finance.db", cfg.DBPath)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("Load() LogLevel = %v, want info", cfg.LogLevel)
		}
		if cfg.Currency != "EUR" {
			t.Errorf("Load() Currency = %v, want EUR", cfg.Currency)
		}
		if cfg.ReportCacheSize != 64 {
			t.Errorf("Load() ReportCacheSize = %v, want 64", cfg.ReportCacheSize)
		}
		if cfg.ReportCacheTTL != 5*time.Minute {
			t.Errorf("Load() ReportCacheTTL = %v, want 5m", cfg.ReportCacheTTL)
		}
		if cfg.ChartWidth != 1200 || cfg.ChartHeight != 600 {
			t.Errorf("Load() chart size = %dx%d, want 1200x600", cfg.ChartWidth, cfg.ChartHeight)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("FINTRACK_DB_PATH", "/tmp/test.db")
		t.Setenv("FINTRACK_LOG_LEVEL", "debug")
		t.Setenv("FINTRACK_CURRENCY", "USD")
		t.Setenv("FINTRACK_REPORT_CACHE_SIZE", "8")
		t.Setenv("FINTRACK_REPORT_CACHE_TTL", "90s")
		t.Setenv("FINTRACK_CHART_WIDTH", "800")

		cfg := Load()

		if cfg.DBPath != "/tmp/test.db" {
			t.Errorf("Load() DBPath = %v, want /tmp/test.db", cfg.DBPath)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.Currency != "USD" {
			t.Errorf("Load() Currency = %v, want USD", cfg.Currency)
		}
		if cfg.ReportCacheSize != 8 {
			t.Errorf("Load() ReportCacheSize = %v, want 8", cfg.ReportCacheSize)
		}
		if cfg.ReportCacheTTL != 90*time.Second {
			t.Errorf("Load() ReportCacheTTL = %v, want 90s", cfg.ReportCacheTTL)
		}
		if cfg.ChartWidth != 800 {
			t.Errorf("Load() ChartWidth = %v, want 800", cfg.ChartWidth)
		}
	})

	t.Run("malformed numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("FINTRACK_REPORT_CACHE_SIZE", "many")
		t.Setenv("FINTRACK_REPORT_CACHE_TTL", "soon")

		cfg := Load()

		if cfg.ReportCacheSize != 64 {
			t.Errorf("Load() ReportCacheSize = %v, want 64", cfg.ReportCacheSize)
		}
		if cfg.ReportCacheTTL != 5*time.Minute {
			t.Errorf("Load() ReportCacheTTL = %v, want 5m", cfg.ReportCacheTTL)
		}
	})
}
