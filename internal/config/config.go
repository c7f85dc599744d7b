// Package config loads state-econ settings from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DefaultCensusBaseURL = "https://api.census.gov/data"
	DefaultStateCodesURL = "https://www.census.gov/library/reference/code-lists/ansi/ansi-codes-for-states.html"
	DefaultAirportsURL   = "https://www.transtats.bts.gov/ONTIME/AirportInfo.html"
)

// Config holds all configuration for the extractors and the CLI
type Config struct {
	// Census API credential; requests are sent without a key when empty.
	CensusAPIKey  string `env:"CENSUS_API_KEY"`
	CensusBaseURL string `env:"CENSUS_BASE_URL,default=https://api.census.gov/data"`

	StateCodesURL string `env:"STATE_CODES_URL,default=https://www.census.gov/library/reference/code-lists/ansi/ansi-codes-for-states.html"`
	AirportsURL   string `env:"AIRPORTS_URL,default=https://www.transtats.bts.gov/ONTIME/AirportInfo.html"`

	// HTTP behaviour
	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT,default=30s"`
	UserAgent         string        `env:"USER_AGENT,default=state-econ/1.0 (github.com/pfrederiksen/state-econ)"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND,default=0"`

	DataDir  string `env:"DATA_DIR,default=~/.local/share/state-econ"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would make every request fail.
func (c *Config) Validate() error {
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative, got %s", c.HTTPTimeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must not be negative, got %v", c.RequestsPerSecond)
	}
	if c.CensusBaseURL == "" {
		return fmt.Errorf("CENSUS_BASE_URL must not be empty")
	}
	return nil
}
