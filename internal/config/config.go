// Package config provides application configuration management,
// loading settings from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Service configuration
	ServiceName string
	Environment string
	GRPCPort    string
	HTTPPort    string

	// Database configuration
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	// Shot measurement
	MaxShotDistanceYards int
	HeatMapGridSize      int

	// Position acquisition
	PositionTimeout      time.Duration
	PositionMaxAge       time.Duration
	PositionHighAccuracy bool
	PositionStaleAfter   time.Duration
	PositionMaxAccuracyM float64
	TrackedDevices       []string

	// Round reports
	ReportOutputPath    string
	ReportWorkers       int
	ReportQueueCapacity int

	// OpenTelemetry configuration
	OTELEndpoint    string
	OTELEnabled     bool
	OTELSampleRatio float64

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "shot-tracker"),
		Environment: getEnv("ENVIRONMENT", "development"),
		GRPCPort:    getEnv("GRPC_PORT", "50051"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),

		PostgresHost:     getEnv("POSTGRES_HOST", "192.168.1.175"),
		PostgresPort:     getEnv("POSTGRES_PORT", "6432"),
		PostgresDB:       getEnv("POSTGRES_DB", "owntracks"),
		PostgresUser:     getEnv("POSTGRES_USER", "development"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "development"),

		ReportOutputPath: getEnv("REPORT_OUTPUT_PATH", "/data/reports"),
		TrackedDevices:   parseList(getEnv("TRACKED_DEVICES", "")),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.MaxShotDistanceYards, err = parseInt("MAX_SHOT_DISTANCE_YARDS", "400"); err != nil {
		return nil, fmt.Errorf("invalid MAX_SHOT_DISTANCE_YARDS: %w", err)
	}
	if cfg.HeatMapGridSize, err = parseInt("HEATMAP_GRID_SIZE", "50"); err != nil {
		return nil, fmt.Errorf("invalid HEATMAP_GRID_SIZE: %w", err)
	}
	if cfg.ReportWorkers, err = parseInt("REPORT_WORKERS", "5"); err != nil {
		return nil, fmt.Errorf("invalid REPORT_WORKERS: %w", err)
	}
	if cfg.ReportQueueCapacity, err = parseInt("REPORT_QUEUE_CAPACITY", "100"); err != nil {
		return nil, fmt.Errorf("invalid REPORT_QUEUE_CAPACITY: %w", err)
	}

	if cfg.PositionTimeout, err = parseDuration("POSITION_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid POSITION_TIMEOUT: %w", err)
	}
	if cfg.PositionMaxAge, err = parseDuration("POSITION_MAX_AGE", "0s"); err != nil {
		return nil, fmt.Errorf("invalid POSITION_MAX_AGE: %w", err)
	}
	if cfg.PositionStaleAfter, err = parseDuration("POSITION_STALE_AFTER", "2m"); err != nil {
		return nil, fmt.Errorf("invalid POSITION_STALE_AFTER: %w", err)
	}
	if cfg.PositionHighAccuracy, err = parseBool("POSITION_HIGH_ACCURACY", "true"); err != nil {
		return nil, fmt.Errorf("invalid POSITION_HIGH_ACCURACY: %w", err)
	}
	if cfg.PositionMaxAccuracyM, err = parseFloat("POSITION_MAX_ACCURACY_METERS", "50"); err != nil {
		return nil, fmt.Errorf("invalid POSITION_MAX_ACCURACY_METERS: %w", err)
	}

	if cfg.OTELEnabled, err = parseBool("OTEL_ENABLED", "true"); err != nil {
		return nil, fmt.Errorf("invalid OTEL_ENABLED: %w", err)
	}
	if cfg.OTELSampleRatio, err = parseFloat("OTEL_SAMPLE_RATIO", "1"); err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATIO: %w", err)
	}

	if cfg.MaxShotDistanceYards <= 0 {
		return nil, fmt.Errorf("invalid MAX_SHOT_DISTANCE_YARDS: must be positive, got %d", cfg.MaxShotDistanceYards)
	}
	if cfg.ReportWorkers <= 0 {
		return nil, fmt.Errorf("invalid REPORT_WORKERS: must be positive, got %d", cfg.ReportWorkers)
	}
	if cfg.ReportQueueCapacity <= 0 {
		return nil, fmt.Errorf("invalid REPORT_QUEUE_CAPACITY: must be positive, got %d", cfg.ReportQueueCapacity)
	}

	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresUser,
		c.PostgresPassword,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseFloat parses a float64 from an environment variable or default value
func parseFloat(key, defaultValue string) (float64, error) {
	value := getEnv(key, defaultValue)
	return strconv.ParseFloat(value, 64)
}

// parseInt parses an int from an environment variable or default value
func parseInt(key, defaultValue string) (int, error) {
	value := getEnv(key, defaultValue)
	return strconv.Atoi(value)
}

// parseDuration parses a Go duration string from an environment variable or default value
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnv(key, defaultValue)
	return time.ParseDuration(value)
}

// parseBool parses a bool from an environment variable or default value
func parseBool(key, defaultValue string) (bool, error) {
	value := getEnv(key, defaultValue)
	return strconv.ParseBool(value)
}

// parseList splits a comma-separated list, dropping empty entries
func parseList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
