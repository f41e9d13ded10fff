package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"tipster/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP API
	HTTPAddr string

	// Moderation
	ModeratorAccessCodeHash string // bcrypt hash of the shared moderator access code

	// Prediction lifecycle
	SweepSchedule       string        // cron spec for the expiry sweep
	MatchTimezone       string        // IANA zone match dates and times are expressed in
	DeletionGracePeriod time.Duration // minimum age before an owner can delete a prediction

	// NATS configuration
	NATSEnabled bool
	NATSServers string // NATS server addresses (comma-separated)

	// Discord webhook for moderator notifications
	DiscordWebhookURL string

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.WithDatabaseName(c.DatabaseURL, c.DatabaseName)
}

// MatchLocation returns the time zone match schedules are interpreted in
func (c *Config) MatchLocation() (*time.Location, error) {
	if c.MatchTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.MatchTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_TIMEZONE %q: %w", c.MatchTimezone, err)
	}
	return loc, nil
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP API
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		// Moderation
		ModeratorAccessCodeHash: os.Getenv("MODERATOR_ACCESS_CODE_HASH"),

		// Lifecycle
		SweepSchedule:       getEnvWithDefault("SWEEP_SCHEDULE", "@every 1m"),
		MatchTimezone:       getEnvWithDefault("MATCH_TIMEZONE", "Europe/Paris"),
		DeletionGracePeriod: 48 * time.Hour,

		// NATS
		NATSEnabled: getEnvBool("NATS_ENABLED", false),
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		// Discord
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),

		// OpenTelemetry
		OTelEnabled:              getEnvBool("OTEL_ENABLED", false),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "tipster"),
		OTelExportIntervalMillis: 30000,

		// Logging
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if grace := os.Getenv("DELETION_GRACE_PERIOD"); grace != "" {
		parsed, err := time.ParseDuration(grace)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("DELETION_GRACE_PERIOD must be a positive duration, got %q", grace)
		}
		config.DeletionGracePeriod = parsed
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
		if _, err := config.MatchLocation(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool parses a boolean environment variable, falling back to the default when unset or malformed
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// CLIConfig holds the settings of the remote admin client
type CLIConfig struct {
	APIBaseURL string
	UserID     string
	AccessCode string
}

// LoadCLI reads the admin client settings. It never requires database settings.
func LoadCLI() CLIConfig {
	_ = godotenv.Load()
	return CLIConfig{
		APIBaseURL: getEnvWithDefault("API_BASE_URL", "http://127.0.0.1:8080"),
		UserID:     os.Getenv("TIPSTER_USER_ID"),
		AccessCode: os.Getenv("TIPSTER_ACCESS_CODE"),
	}
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		HTTPAddr:            ":0",
		SweepSchedule:       "@every 1m",
		MatchTimezone:       "UTC",
		DeletionGracePeriod: 48 * time.Hour,
		OTelExporterType:    "none",
		OTelServiceName:     "tipster-test",
		LogLevel:            "debug",
	}
}
