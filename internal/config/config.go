// Package config provides configuration management for the edge engine.
package config

import (
	"fmt"

	"github.com/yourusername/edge-engine/internal/acca"
	"github.com/yourusername/edge-engine/internal/engine"
)

// Config represents the complete application configuration.
type Config struct {
	App       AppConfig        `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig   `mapstructure:"database" validate:"required"`
	Provider  ProviderConfig   `mapstructure:"provider" validate:"required"`
	Engine    engine.Config    `mapstructure:"engine"`
	Acca      acca.BuildConfig `mapstructure:"acca"`
	Slate     SlateConfig      `mapstructure:"slate" validate:"required"`
	Metrics   MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Scheduler SchedulerConfig  `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration.
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents the prediction-store connection configuration.
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// ProviderConfig represents the external stats/odds provider configuration.
type ProviderConfig struct {
	BaseURL          string  `mapstructure:"base_url" validate:"required,url"`
	ResultsStreamURL string  `mapstructure:"results_stream_url"`
	APIKey           string  `mapstructure:"api_key"`
	TimeoutSeconds   int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries       int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit        float64 `mapstructure:"rate_limit" validate:"gt=0"`
	CacheTTLSeconds  int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// SlateConfig represents daily slate processing configuration.
type SlateConfig struct {
	Bankroll     float64  `mapstructure:"bankroll" validate:"required,gt=0"`
	Workers      int      `mapstructure:"workers" validate:"required,gt=0"`
	Markets      []string `mapstructure:"markets" validate:"markets"`
	AccaCount    int      `mapstructure:"acca_count" validate:"gte=0"`
	AccaStake    float64  `mapstructure:"acca_stake" validate:"gte=0"`
	PublishPicks bool     `mapstructure:"publish_picks"`
}

// MetricsConfig represents metrics and monitoring configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents cron scheduling configuration.
type SchedulerConfig struct {
	SlateCron      string `mapstructure:"slate_cron"`
	TimeoutMinutes int    `mapstructure:"timeout_minutes"`
}

// IsDevelopment checks if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string.
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
