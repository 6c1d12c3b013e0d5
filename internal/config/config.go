// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	DBURL              string        `mapstructure:"DB_URL"`
	HTTPAddr           string        `mapstructure:"HTTP_ADDR"`
	TicketmasterAPIKey string        `mapstructure:"TICKETMASTER_API_KEY"`
	EventbriteAPIToken string        `mapstructure:"EVENTBRITE_API_TOKEN"`
	EventbriteOrgID    string        `mapstructure:"EVENTBRITE_ORG_ID"`
	City               string        `mapstructure:"CITY"`
	CountryCode        string        `mapstructure:"COUNTRY_CODE"`
	SyncInterval       time.Duration `mapstructure:"SYNC_INTERVAL"`
}

// LoadConfig reads configuration from file and/or environment variables.
//
// The provider credentials are deliberately not validated here: an absent
// key fails a sync attempt at run time, before any HTTP call, rather than
// preventing the service from starting and serving already-synced data.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("CITY", "New York")
	viper.SetDefault("COUNTRY_CODE", "US")
	viper.SetDefault("SYNC_INTERVAL", "5h")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.City == "" {
		return nil, errors.New("CITY must not be empty")
	}
	if cfg.SyncInterval < time.Minute {
		return nil, errors.New("SYNC_INTERVAL must be at least 1m")
	}
	if cfg.EventbriteAPIToken != "" && cfg.EventbriteOrgID == "" {
		return nil, errors.New("EVENTBRITE_ORG_ID is required when EVENTBRITE_API_TOKEN is set")
	}

	return &cfg, nil
}
