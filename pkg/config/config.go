package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Timezone used to interpret sale timestamps and "today"
	AppTZ string

	// Shared secret expected in X-ML-Secret
	MLSecret string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Model artifacts / gateway
	Model ModelConfig

	// Feature enrichment (discount + basket tables)
	EnrichmentEnabled bool
	EnrichmentTimeout time.Duration

	// Forecast policy YAML (optional)
	PolicyFile string

	// Scheduled retraining
	Retrain RetrainConfig

	// Training endpoint rate limit (requests per minute, 0 = unlimited)
	APIRateLimit int

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ModelConfig holds model artifact and gateway configuration
type ModelConfig struct {
	Dir           string        // artifact directory
	Backend       string        // profile | remote
	RemoteURL     string        // external scoring service
	RemoteTimeout time.Duration // per request
	RemoteRPS     float64       // client-side throttle
}

// RetrainConfig holds scheduled retraining configuration
type RetrainConfig struct {
	Enabled  bool
	Schedule string // cron expression with seconds
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		AppTZ:    getEnv("APP_TZ", "America/New_York"),
		MLSecret: getEnv("ML_SECRET", "dev-secret"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "10m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Model
		Model: ModelConfig{
			Dir:           getEnv("MODEL_DIR", "./models"),
			Backend:       getEnv("MODEL_BACKEND", "profile"),
			RemoteURL:     getEnv("MODEL_REMOTE_URL", ""),
			RemoteTimeout: getEnvAsDuration("MODEL_REMOTE_TIMEOUT", "3s"),
			RemoteRPS:     getEnvAsFloat("MODEL_REMOTE_RPS", 20),
		},

		EnrichmentEnabled: getEnvAsBool("ENRICHMENT_ENABLED", true),
		EnrichmentTimeout: getEnvAsDuration("ENRICHMENT_TIMEOUT", "5s"),

		PolicyFile: getEnv("FORECAST_POLICY_FILE", ""),

		Retrain: RetrainConfig{
			Enabled:  getEnvAsBool("RETRAIN_ENABLED", false),
			Schedule: getEnv("RETRAIN_SCHEDULE", "0 30 23 * * *"),
		},

		APIRateLimit: getEnvAsInt("API_RATE_LIMIT", 6),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Location returns the configured application timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if _, err := time.LoadLocation(c.AppTZ); err != nil {
		return fmt.Errorf("APP_TZ is not a valid timezone: %w", err)
	}

	switch c.Model.Backend {
	case "profile":
	case "remote":
		if c.Model.RemoteURL == "" {
			return fmt.Errorf("MODEL_REMOTE_URL is required when MODEL_BACKEND=remote")
		}
	default:
		return fmt.Errorf("MODEL_BACKEND must be one of: profile, remote")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
