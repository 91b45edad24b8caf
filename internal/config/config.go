package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yigit/campusconnect/internal/pkg/helpers"
)

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" envSeparator:","`
	} `yaml:"server"`

	Store struct {
		Backend string `yaml:"backend" env:"STORE_BACKEND"`
	} `yaml:"store"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Notification struct {
		Channel          string `yaml:"channel" env:"NOTIFY_CHANNEL"`
		FromName         string `yaml:"from_name" env:"NOTIFY_FROM_NAME"`
		SimulatedDelayMS int    `yaml:"simulated_delay_ms" env:"NOTIFY_SIMULATED_DELAY_MS"`

		SMTP struct {
			Host      string `yaml:"host" env:"SMTP_HOST"`
			Port      int    `yaml:"port" env:"SMTP_PORT"`
			Username  string `yaml:"username" env:"SMTP_USERNAME"`
			Password  string `yaml:"password" env:"SMTP_PASSWORD"`
			FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
			UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
		} `yaml:"smtp"`

		SendGrid struct {
			APIKey    string `yaml:"api_key" env:"SENDGRID_API_KEY"`
			FromEmail string `yaml:"from_email" env:"SENDGRID_FROM_EMAIL"`
		} `yaml:"sendgrid"`
	} `yaml:"notification"`

	Approval struct {
		Required bool `yaml:"required" env:"APPROVAL_REQUIRED"`
	} `yaml:"approval"`

	Auth struct {
		CreateProfileOnSignIn bool `yaml:"create_profile_on_signin" env:"AUTH_CREATE_PROFILE_ON_SIGNIN"`
	} `yaml:"auth"`

	Seed struct {
		Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"*"}

	config.Store.Backend = StoreMemory

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campusconnect"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "campusconnect.app"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Notification.Channel = "simulated"
	config.Notification.FromName = "Placement Cell"
	config.Notification.SimulatedDelayMS = 1000
	config.Notification.SMTP.Port = 587
	config.Notification.SMTP.UseTLS = true

	config.Approval.Required = true
	config.Auth.CreateProfileOnSignIn = true
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch config.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection max lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	switch strings.ToLower(config.Notification.Channel) {
	case "simulated", "smtp", "sendgrid":
	default:
		return fmt.Errorf("unknown notification channel %q", config.Notification.Channel)
	}

	if config.Notification.SimulatedDelayMS < 0 {
		return fmt.Errorf("simulated notification delay cannot be negative")
	}

	return nil
}

// AccessTokenTTL returns the parsed access token lifetime. LoadConfig has
// already validated the format.
func (c *Config) AccessTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTokenExpiration)
	return d
}

// ConnMaxLifetime returns the parsed connection lifetime
func (c *Config) ConnMaxLifetime() time.Duration {
	return helpers.ParseDuration(c.Database.ConnMaxLifetime, time.Hour)
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in release mode
func (c *Config) IsProduction() bool {
	mode := strings.ToLower(c.Server.Mode)
	return mode == "production" || mode == "release"
}
