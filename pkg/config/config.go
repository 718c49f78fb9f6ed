package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	// Driver selects the gorm dialector: "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	// DriverName is the database/sql driver used under the postgres dialector:
	// "pgx" (default) or "postgres" for lib/pq.
	DriverName   string `mapstructure:"driver_name"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"ssl_mode"`
	Path         string `mapstructure:"path"` // sqlite file
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	Debug        bool   `mapstructure:"debug"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Host     string `mapstructure:"host"`
	Mode     string `mapstructure:"mode"`
	APIKey   string `mapstructure:"api_key"`
	Timezone string `mapstructure:"timezone"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Exporter    string `mapstructure:"exporter"` // none | stdout
	ServiceName string `mapstructure:"service_name"`
}

// Load loads configuration from environment variables and config files.
// An empty path searches ./config.yaml and ./config/config.yaml.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Set default values
	v.SetDefault("database.driver", getEnv("DB_DRIVER", "postgres"))
	v.SetDefault("database.driver_name", "pgx")
	v.SetDefault("database.host", getEnv("PG_HOST", "localhost"))
	v.SetDefault("database.port", getEnvInt("PG_PORT", 5432))
	v.SetDefault("database.user", getEnv("PG_USER", "postgres"))
	v.SetDefault("database.password", getEnv("PG_PASSWORD", ""))
	v.SetDefault("database.name", getEnv("PG_DATABASE", "todoflow"))
	v.SetDefault("database.ssl_mode", getEnv("PG_SSL_MODE", "disable"))
	v.SetDefault("database.path", "todoflow.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.debug", false)
	v.SetDefault("server.port", getEnvInt("SERVER_PORT", 8080))
	v.SetDefault("server.host", getEnv("SERVER_HOST", "localhost"))
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("tracing.exporter", "none")
	v.SetDefault("tracing.service_name", "todoflow")

	// Enable environment variable support: TODOFLOW_DATABASE_HOST etc.
	v.SetEnvPrefix("TODOFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that would otherwise fail much later at startup.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Tracing.Exporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("unsupported tracing exporter %q", c.Tracing.Exporter)
	}
	if _, err := c.Server.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone used for calendar-day statistics.
func (s ServerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid server timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Address returns the host:port the HTTP server listens on.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetDatabaseDSN builds the postgres connection string.
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Database.Host,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.Port,
		c.Database.SSLMode,
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
