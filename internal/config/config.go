package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/packers-hub/internal/platform/logging"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	minScheduleInterval = 30 * time.Second
	maxScheduleInterval = 60 * time.Second
)

// Config stores runtime configuration for the sync engine.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	BackendBaseURL               string
	BackendTimeout               time.Duration
	BackendMaxRetries            int
	BackendCircuitEnabled        bool
	BackendCircuitFailureCount   int
	BackendCircuitOpenTimeout    time.Duration
	BackendCircuitHalfOpenMaxReq int

	Season int
	UserID string

	StorageDir             string
	RemoteFavoritesEnabled bool

	ScheduleInterval time.Duration
	StatsInterval    time.Duration
	RosterCacheTTL   time.Duration
	StatsWorkers     int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	backendTimeout, err := getEnvAsDuration("BACKEND_TIMEOUT", 20*time.Second)
	if err != nil {
		return Config{}, err
	}
	backendMaxRetries, err := getEnvAsInt("BACKEND_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, err
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("BACKEND_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKEND_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("BACKEND_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, err
	}
	circuitOpenTimeout, err := getEnvAsDuration("BACKEND_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("BACKEND_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, err
	}

	season, err := getEnvAsInt("SEASON", 2025)
	if err != nil {
		return Config{}, err
	}
	if season <= 0 {
		return Config{}, fmt.Errorf("SEASON must be greater than zero")
	}

	remoteFavorites, err := strconv.ParseBool(getEnv("REMOTE_FAVORITES_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REMOTE_FAVORITES_ENABLED: %w", err)
	}

	scheduleInterval, err := getEnvAsDuration("SCHEDULE_INTERVAL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	statsInterval, err := getEnvAsDuration("STATS_INTERVAL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	rosterCacheTTL, err := getEnvAsDuration("ROSTER_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}
	statsWorkers, err := getEnvAsInt("STATS_WORKERS", 4)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("SERVICE_NAME", "packers-hub"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		LogLevel:       logLevel,

		BackendBaseURL:               getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
		BackendTimeout:               backendTimeout,
		BackendMaxRetries:            backendMaxRetries,
		BackendCircuitEnabled:        circuitEnabled,
		BackendCircuitFailureCount:   circuitFailureCount,
		BackendCircuitOpenTimeout:    circuitOpenTimeout,
		BackendCircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,

		Season: season,
		UserID: getEnv("PROFILE_ID", "anonymous"),

		StorageDir:             getEnv("STORAGE_DIR", ""),
		RemoteFavoritesEnabled: remoteFavorites,

		ScheduleInterval: clampScheduleInterval(scheduleInterval),
		StatsInterval:    statsInterval,
		RosterCacheTTL:   rosterCacheTTL,
		StatsWorkers:     statsWorkers,
	}, nil
}

// clampScheduleInterval pins the schedule poll cadence into its supported
// range so the backend is never hammered nor the liveness signal starved.
func clampScheduleInterval(interval time.Duration) time.Duration {
	if interval < minScheduleInterval {
		return minScheduleInterval
	}
	if interval > maxScheduleInterval {
		return maxScheduleInterval
	}

	return interval
}

func parseAppEnv(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case EnvDev, EnvStaging, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: expected one of %s, %s, %s", value, EnvDev, EnvStaging, EnvProd)
	}
}

func parseLogLevel(value string) (logging.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return logging.LevelDebug, nil
	case "info", "":
		return logging.LevelInfo, nil
	case "warn", "warning":
		return logging.LevelWarn, nil
	case "error":
		return logging.LevelError, nil
	default:
		return logging.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", value)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return parsed, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return parsed, nil
}
