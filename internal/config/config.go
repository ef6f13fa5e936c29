// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Invoice   InvoiceConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver         string `envconfig:"DB_DRIVER" default:"postgres"`
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	User           string `envconfig:"DB_USER" default:"retail"`
	Password       string `envconfig:"DB_PASSWORD" default:"retail123"`
	Name           string `envconfig:"DB_NAME" default:"retail"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath     string `envconfig:"DB_SQLITE_PATH" default:"retail.db"`
	ConnectRetries uint64 `envconfig:"DB_CONNECT_RETRIES" default:"5"`
	Debug          bool   `envconfig:"DB_DEBUG" default:"false"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev                bool   `envconfig:"DEV" default:"true"`
	Migrations         bool   `envconfig:"MIGRATIONS" default:"false"`
	AllowNegativeStock bool   `envconfig:"ALLOW_NEGATIVE_STOCK" default:"true"`
	SessionSecret      string `envconfig:"SESSION_SECRET"`
	ArtifactDir        string `envconfig:"ARTIFACT_DIR" default:"./var/artifacts"`
}

// InvoiceConfig controls document rendering.
type InvoiceConfig struct {
	Lang string `envconfig:"INVOICE_LANG" default:"fr"`
}

// KafkaConfig enables order event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers    []string `envconfig:"KAFKA_BROKERS"`
	OrderTopic string   `envconfig:"KAFKA_ORDER_TOPIC" default:"retail.orders"`
}

// TelemetryConfig enables trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint string `envconfig:"OTEL_ENDPOINT"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"true"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	var cfg Config
	sections := []any{&cfg.Server, &cfg.Database, &cfg.App, &cfg.Invoice, &cfg.Kafka, &cfg.Telemetry}
	for _, section := range sections {
		// Keys carry their full name so envconfig never falls back to unrelated variables like USER.
		if err := envconfig.Process("", section); err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, errors.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.App.SessionSecret == "" {
		if !cfg.App.Dev {
			return nil, errors.New("SESSION_SECRET is required outside dev mode")
		}
		cfg.App.SessionSecret = "dev-secret-change-me"
	}
	return &cfg, nil
}
