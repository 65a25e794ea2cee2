package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// CasdoorConfig holds the identity provider connection settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// Config holds the full service configuration, loaded from the environment
// with optional .env overrides for local development.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string
	KafkaTopic   string

	Casdoor CasdoorConfig
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	// Ignore the error: a missing .env file just means plain env vars
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "advising-events"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
