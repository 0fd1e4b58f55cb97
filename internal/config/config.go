package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Media      MediaConfig
	CartExpiry CartExpiryConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	MaxConnections     int
	MinConnections     int
	MaxConnLifetime    int // seconds
	LockTimeoutMS      int
	StatementTimeoutMS int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// MediaConfig holds configuration for product image storage.
type MediaConfig struct {
	UploadDir string
	S3Enabled bool
	Bucket    string
	Region    string
	Prefix    string // Path prefix within bucket (e.g., "products/")
}

// CartExpiryConfig holds configuration for releasing stock held by idle carts.
type CartExpiryConfig struct {
	Enabled       bool
	RedisURL      string
	TTL           time.Duration
	SweepInterval time.Duration
	BatchSize     int
	Concurrency   int
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables
// take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvAsInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "postgres"),
			Password:           getEnv("DB_PASSWORD", ""),
			Database:           getEnv("DB_NAME", "storefront"),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:     getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime:    getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			LockTimeoutMS:      getEnvAsInt("DB_LOCK_TIMEOUT_MS", 5000),
			StatementTimeoutMS: getEnvAsInt("DB_STATEMENT_TIMEOUT_MS", 15000),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Media: MediaConfig{
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
			S3Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Prefix:    getEnv("S3_PREFIX", "products/"),
		},
		CartExpiry: CartExpiryConfig{
			Enabled:       getEnvAsBool("CART_EXPIRY_ENABLED", false),
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TTL:           getEnvAsDuration("CART_EXPIRY_TTL", 24*time.Hour),
			SweepInterval: getEnvAsDuration("CART_EXPIRY_SWEEP_INTERVAL", 5*time.Minute),
			BatchSize:     getEnvAsInt("CART_EXPIRY_BATCH_SIZE", 100),
			Concurrency:   getEnvAsInt("CART_EXPIRY_CONCURRENCY", 4),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Database.LockTimeoutMS < 0 || c.Database.StatementTimeoutMS < 0 {
		return fmt.Errorf("database timeouts cannot be negative")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Media.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}

	if c.Media.S3Enabled {
		if c.Media.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.Media.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.CartExpiry.Enabled {
		if c.CartExpiry.RedisURL == "" {
			return fmt.Errorf("redis URL is required when cart expiry is enabled")
		}
		if c.CartExpiry.TTL <= 0 {
			return fmt.Errorf("cart expiry TTL must be positive")
		}
		if c.CartExpiry.SweepInterval <= 0 {
			return fmt.Errorf("cart expiry sweep interval must be positive")
		}
		if c.CartExpiry.BatchSize < 1 || c.CartExpiry.Concurrency < 1 {
			return fmt.Errorf("cart expiry batch size and concurrency must be at least 1")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
