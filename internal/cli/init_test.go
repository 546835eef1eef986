package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&buf, "debug")
	logger.Debug("hello")
	if !strings.Contains(buf.String(), "component=cli") || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("unexpected log output %q", buf.String())
	}

	buf.Reset()
	SetupLogger(&buf, "chatty")
	if !strings.Contains(buf.String(), "Falling back to info log level") {
		t.Fatalf("expected fallback warning, got %q", buf.String())
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FINTRACK_CURRENCY=CHF\n"), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FINTRACK_CURRENCY", "")
	os.Unsetenv("FINTRACK_CURRENCY")

	LoadEnvFile(path)
	if got := os.Getenv("FINTRACK_CURRENCY"); got != "CHF" {
		t.Fatalf("FINTRACK_CURRENCY = %q, want CHF", got)
	}

	// A missing file is ignored.
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("FINTRACK_LOG_LEVEL", "nope")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected validation error")
	}

	t.Setenv("FINTRACK_LOG_LEVEL", "warn")
	cfg, err := LoadAndValidateConfig()
	if err != nil || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected config %+v err=%v", cfg, err)
	}
}

func TestInitLedger(t *testing.T) {
	t.Setenv("FINTRACK_DB_PATH", filepath.Join(t.TempDir(), "data", "finance.db"))
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	var buf bytes.Buffer
	svc, err := InitLedger(SetupLogger(&buf, "error"), cfg)
	if err != nil {
		t.Fatalf("init ledger: %v", err)
	}
	defer svc.Close()

	n, err := svc.CountTransactions(context.Background(), core.Filter{})
	if err != nil || n != 0 {
		t.Fatalf("fresh ledger should be empty, n=%d err=%v", n, err)
	}
}
