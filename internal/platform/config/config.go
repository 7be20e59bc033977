// Package config loads process configuration from an optional YAML file with
// environment variable overrides, so main stays lean and deployments can ship
// either a config file or plain env.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Email    EmailConfig    `yaml:"email"`
}

// AppConfig captures HTTP server level configuration.
type AppConfig struct {
	Addr string `yaml:"addr"`
	// BaseURL is the externally reachable address used to build
	// confirmation links, e.g. "https://newsletter.example.com".
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// EmailConfig holds the outbound mail transport settings.
type EmailConfig struct {
	BaseURL     string   `yaml:"base_url"`
	Sender      string   `yaml:"sender"`
	ServerToken string   `yaml:"server_token"`
	Timeout     Duration `yaml:"timeout"`
}

// Duration wraps time.Duration so YAML values like "500ms" parse naturally.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load builds the configuration. A YAML file named by BULLETIN_CONFIG is read
// first when present; environment variables override file values; anything
// still unset falls back to development defaults.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("BULLETIN_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Addr:    ":8000",
			BaseURL: "http://127.0.0.1:8000",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			SSLMode: "disable",
			Name:    "newsletter",
		},
		Email: EmailConfig{
			Timeout: Duration(10 * time.Second),
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.App.Addr, "BULLETIN_ADDR")
	setString(&cfg.App.BaseURL, "BULLETIN_BASE_URL")

	setString(&cfg.Database.Host, "DATABASE_HOST")
	setInt(&cfg.Database.Port, "DATABASE_PORT")
	setString(&cfg.Database.User, "DATABASE_USER")
	setString(&cfg.Database.Password, "DATABASE_PASSWORD")
	setString(&cfg.Database.Name, "DATABASE_NAME")
	setString(&cfg.Database.SSLMode, "DATABASE_SSLMODE")

	setString(&cfg.Email.BaseURL, "EMAIL_BASE_URL")
	setString(&cfg.Email.Sender, "EMAIL_SENDER")
	setString(&cfg.Email.ServerToken, "EMAIL_SERVER_TOKEN")
	setDuration(&cfg.Email.Timeout, "EMAIL_TIMEOUT")
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			*dst = n
		}
	}
}
