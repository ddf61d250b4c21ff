// Package config loads process configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server and seed tools need.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	DatabaseURL      string
	DBMaxConns       int32
	DBMinConns       int32
	StatementTimeout time.Duration

	JWTSecret string

	RabbitMQURL      string
	RabbitMQExchange string

	NATSURL           string
	NATSSubjectPrefix string

	ReportLocation    *time.Location
	SideEffectTimeout time.Duration
}

// Development reports whether the service runs in development mode.
func (c Config) Development() bool {
	return c.AppEnv == "development"
}

// Load reads configuration. Missing required values are reported as an error.
func Load() (Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("APP_PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxConns:        int32(getEnvInt("DB_MAX_CONNS", 25)),
		DBMinConns:        int32(getEnvInt("DB_MIN_CONNS", 2)),
		StatementTimeout:  getEnvDuration("DB_STATEMENT_TIMEOUT", 30*time.Second),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange:  getEnv("RABBITMQ_EXCHANGE", "orders.events"),
		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "restopos"),
		SideEffectTimeout: getEnvDuration("SIDE_EFFECT_TIMEOUT", 10*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("required environment variable DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		if !cfg.Development() {
			return Config{}, fmt.Errorf("required environment variable JWT_SECRET not set")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	loc, err := loadLocation(getEnv("REPORT_TIMEZONE", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.ReportLocation = loc

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
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
