package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string // empty means the built-in question bank
	RedisURL    string // empty means results are kept in memory
	Environment string

	// Test timing, in seconds unless stated otherwise
	TestDuration int
	TimeWarning  int
	TickInterval time.Duration
	ResultsTTL   time.Duration

	Events EventConfig
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine; the environment alone is enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	tickInterval, err := time.ParseDuration(getEnv("TICK_INTERVAL", "1s"))
	if err != nil {
		return nil, err
	}
	// The countdown moves in whole seconds and cron schedules @every in whole seconds.
	if tickInterval < time.Second || tickInterval%time.Second != 0 {
		return nil, errors.New("TICK_INTERVAL must be a whole number of seconds, at least 1s")
	}

	resultsTTL, err := time.ParseDuration(getEnv("RESULTS_TTL", "24h"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		Environment:  getEnv("ENVIRONMENT", "development"),
		TestDuration: getEnvInt("TEST_DURATION_SECONDS", 1200),
		TimeWarning:  getEnvInt("TIME_WARNING_SECONDS", 300),
		TickInterval: tickInterval,
		ResultsTTL:   resultsTTL,
		Events: EventConfig{
			Enabled:      getEnvBool("EVENTS_ENABLED", true),
			Publisher:    getEnv("EVENTS_PUBLISHER", "gochannel"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			AttemptTopic: getEnv("ATTEMPT_TOPIC", "attempts"),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
