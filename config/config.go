package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"banker/money"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Ledger configuration
	WorldID                int64
	StartingMoney          money.Money // granted from the world account on account creation
	AccountsEnabledDefault bool

	// Pay run configuration
	PayIntervalMinutes   int
	IdleThresholdMinutes int
	PayAmount            money.Money

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Ledger settings with defaults
		StartingMoney:          0,
		AccountsEnabledDefault: true,

		// Pay run settings with defaults
		PayIntervalMinutes:   30,
		IdleThresholdMinutes: 10,
		PayAmount:            0,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if worldID := os.Getenv("WORLD_ID"); worldID != "" {
		parsed, err := strconv.ParseInt(worldID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WORLD_ID %q: %w", worldID, err)
		}
		config.WorldID = parsed
	}
	if starting := os.Getenv("STARTING_MONEY"); starting != "" {
		parsed, err := money.Parse(starting)
		if err != nil {
			return nil, fmt.Errorf("invalid STARTING_MONEY: %w", err)
		}
		config.StartingMoney = parsed
	}
	if amount := os.Getenv("PAY_AMOUNT"); amount != "" {
		parsed, err := money.Parse(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid PAY_AMOUNT: %w", err)
		}
		config.PayAmount = parsed
	}
	if interval := os.Getenv("PAY_INTERVAL_MINUTES"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.PayIntervalMinutes = parsed
		}
	}
	if threshold := os.Getenv("IDLE_THRESHOLD_MINUTES"); threshold != "" {
		if parsed, err := strconv.Atoi(threshold); err == nil {
			config.IdleThresholdMinutes = parsed
		}
	}
	if enabled := os.Getenv("ACCOUNTS_ENABLED_DEFAULT"); enabled != "" {
		config.AccountsEnabledDefault = enabled == "true"
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
	}

	return config, nil
}
