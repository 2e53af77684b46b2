package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/packers-hub/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("app env = %q", cfg.AppEnv)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("log level = %v", cfg.LogLevel)
	}
	if cfg.Season != 2025 {
		t.Fatalf("season = %d", cfg.Season)
	}
	if cfg.UserID != "anonymous" {
		t.Fatalf("user id = %q", cfg.UserID)
	}
	if cfg.BackendBaseURL != "http://localhost:8000" {
		t.Fatalf("backend base url = %q", cfg.BackendBaseURL)
	}
	if cfg.ScheduleInterval != 30*time.Second {
		t.Fatalf("schedule interval = %v", cfg.ScheduleInterval)
	}
	if cfg.StatsWorkers != 4 {
		t.Fatalf("stats workers = %d", cfg.StatsWorkers)
	}
	if cfg.RemoteFavoritesEnabled {
		t.Fatalf("remote favorites should default off")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SEASON", "2026")
	t.Setenv("PROFILE_ID", "cheesehead-42")
	t.Setenv("BACKEND_BASE_URL", "http://backend:9000")
	t.Setenv("BACKEND_MAX_RETRIES", "5")
	t.Setenv("STATS_INTERVAL", "45s")
	t.Setenv("REMOTE_FAVORITES_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppEnv != EnvProd {
		t.Fatalf("app env = %q", cfg.AppEnv)
	}
	if cfg.LogLevel != logging.LevelWarn {
		t.Fatalf("log level = %v", cfg.LogLevel)
	}
	if cfg.Season != 2026 {
		t.Fatalf("season = %d", cfg.Season)
	}
	if cfg.UserID != "cheesehead-42" {
		t.Fatalf("user id = %q", cfg.UserID)
	}
	if cfg.BackendBaseURL != "http://backend:9000" {
		t.Fatalf("backend base url = %q", cfg.BackendBaseURL)
	}
	if cfg.BackendMaxRetries != 5 {
		t.Fatalf("max retries = %d", cfg.BackendMaxRetries)
	}
	if cfg.StatsInterval != 45*time.Second {
		t.Fatalf("stats interval = %v", cfg.StatsInterval)
	}
	if !cfg.RemoteFavoritesEnabled {
		t.Fatalf("remote favorites should be enabled")
	}
}

func TestLoad_ScheduleIntervalClamped(t *testing.T) {
	t.Setenv("SCHEDULE_INTERVAL", "5s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ScheduleInterval != minScheduleInterval {
		t.Fatalf("interval not clamped up: %v", cfg.ScheduleInterval)
	}

	t.Setenv("SCHEDULE_INTERVAL", "10m")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ScheduleInterval != maxScheduleInterval {
		t.Fatalf("interval not clamped down: %v", cfg.ScheduleInterval)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad app env", "APP_ENV", "production-ish"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad season", "SEASON", "twenty25"},
		{"zero season", "SEASON", "0"},
		{"bad duration", "BACKEND_TIMEOUT", "soon"},
		{"bad bool", "BACKEND_CIRCUIT_ENABLED", "maybe"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
