package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// BigQuery data source.
	ProjectID       string
	StationID       string
	Dataset         string
	CredentialsFile string

	// Narrator (Hugging Face Inference API).
	HFToken   string
	HFBaseURL string
	LLMModel  string

	// Analysis thresholds.
	AnomalyZScore   float64
	SpikeThresholdC float64

	// HTTPTimeout bounds each outbound narrator call.
	HTTPTimeout time.Duration

	// ObsCacheTTL controls how long fetched observations are reused (0 = no caching).
	ObsCacheTTL time.Duration

	// WatchdogInterval controls how often the data-source probe runs (0 = disabled).
	WatchdogInterval time.Duration

	Port     string
	AppEnv   string
	LogLevel slog.Level
}

// Load reads configuration from environment with sensible defaults.
// A .env file is honored when present but never required.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.ProjectID = getenvDefault("GCP_PROJECT_ID", "ai-weather-analytics")
	cfg.StationID = getenvDefault("WEATHER_STATION_ID", "999999")
	cfg.Dataset = getenvDefault("BQ_DATASET", "bigquery-public-data.noaa_gsod.gsod2023")
	cfg.CredentialsFile = os.Getenv("GCP_CREDENTIALS_FILE")

	cfg.HFToken = os.Getenv("HF_TOKEN")
	if cfg.HFToken == "" {
		return nil, fmt.Errorf("HF_TOKEN must be set")
	}
	cfg.HFBaseURL = getenvDefault("HF_BASE_URL", "https://api-inference.huggingface.co")
	cfg.LLMModel = getenvDefault("LLM_MODEL", "meta-llama/Llama-3.2-3B-Instruct")

	cfg.AnomalyZScore = getenvFloat("ANOMALY_ZSCORE", 2.0)
	cfg.SpikeThresholdC = getenvFloat("SPIKE_THRESHOLD_C", 5.0)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	ttlStr := getenvDefault("OBS_CACHE_TTL", "10m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid OBS_CACHE_TTL: %w", err)
	}
	cfg.ObsCacheTTL = ttl

	watchdogStr := getenvDefault("WATCHDOG_INTERVAL", "15m")
	watchdogInterval, err := time.ParseDuration(watchdogStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WATCHDOG_INTERVAL: %w", err)
	}
	cfg.WatchdogInterval = watchdogInterval

	cfg.Port = getenvDefault("PORT", "8080")

	appEnv := getenvDefault("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}
	cfg.AppEnv = appEnv

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
