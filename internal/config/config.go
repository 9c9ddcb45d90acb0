package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	DataPath      string
	ReferenceYear int // 0 means the year most records fall in

	SimulationMinYear int
	HourlyCount       int
	DailyCount        int
	CarbonIndex       int
	SummaryCacheSize  int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	KafkaBrokers    []string
	KafkaTopic      string
	PublishInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where
// unset. Variables in ENV_FILE (default .env) are loaded first when the file
// exists; they never override variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load ENV_FILE: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataPath:     sharedcfg.EnvOrDefault("DATA_PATH", "data/observations.csv"),
		HTTPAddr:     sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:     sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "speculative-forecasts"),

		ShutdownTimeout: shutdownTimeout,
	}

	ints := []struct {
		key    string
		def    int
		lo, hi int
		target *int
	}{
		{"REFERENCE_YEAR", 0, 0, 9999, &cfg.ReferenceYear},
		{"SIMULATION_MIN_YEAR", 2060, 1, 9999, &cfg.SimulationMinYear},
		{"HOURLY_COUNT", 24, 1, 24, &cfg.HourlyCount},
		{"DAILY_COUNT", 6, 1, 7, &cfg.DailyCount},
		{"CARBON_INDEX", 0, 0, 9, &cfg.CarbonIndex},
		{"SUMMARY_CACHE_SIZE", 64, 1, 100000, &cfg.SummaryCacheSize},
		{"RATE_LIMIT_BURST", 10, 1, 10000, &cfg.RateLimitBurst},
	}
	for _, v := range ints {
		n, err := parseIntRange(v.key, v.def, v.lo, v.hi)
		if err != nil {
			return nil, err
		}
		*v.target = n
	}

	if cfg.RateLimitRPS, err = parsePositiveFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.PublishInterval, err = parsePositiveDuration("PUBLISH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

func parseIntRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return f, nil
}

func parsePositiveDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}
