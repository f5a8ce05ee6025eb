// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/vibecheck-lab/vibecheck/internal/constants"
)

type Config struct {
	// Upstreams
	BscRPC        string `validate:"required,url"`
	OpbnbRPC      string `validate:"required,url"`
	BscScanAPIKey string
	BscScanAPI    string `validate:"required,url"`
	HoneypotAPI   string `validate:"required,url"`

	// Reasoning service
	OpenRouterAPIKey string
	OpenRouterAPI    string `validate:"required,url"`
	OpenRouterModel  string `validate:"required"`
	DelegateTimeout  time.Duration

	// Attestation (both must be set for the bridge to activate)
	AttestationContract string `validate:"omitempty,eth_addr"`
	AttesterPrivateKey  string

	// Storage
	DatabaseURL  string // postgres DSN; empty means local SQLite
	DatabasePath string

	// Cache
	CacheTTL      time.Duration
	CacheCapacity int

	// Server
	Port     int
	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BscRPC:        getEnvWithDefault("BSC_RPC", constants.BscRPC),
		OpbnbRPC:      getEnvWithDefault("OPBNB_RPC", constants.OpbnbRPC),
		BscScanAPIKey: os.Getenv("BSCSCAN_API_KEY"),
		BscScanAPI:    getEnvWithDefault("BSCSCAN_API", constants.BscScanAPI),
		HoneypotAPI:   getEnvWithDefault("HONEYPOT_API", constants.HoneypotAPI),

		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterAPI:    getEnvWithDefault("OPENROUTER_API", constants.OpenRouterAPI),
		OpenRouterModel:  getEnvWithDefault("OPENROUTER_MODEL", constants.OpenRouterModel),
		DelegateTimeout:  getEnvDuration("DELEGATE_TIMEOUT", 45*time.Second),

		AttestationContract: os.Getenv("VIBECHECK_CONTRACT_ADDRESS"),
		AttesterPrivateKey:  os.Getenv("ATTESTER_PRIVATE_KEY"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabasePath: getEnvWithDefault("DATABASE_PATH", "vibecheck.db"),

		CacheTTL:      getEnvDuration("CACHE_TTL", time.Hour),
		CacheCapacity: getEnvInt("CACHE_CAPACITY", 200),

		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// AttestationEnabled reports whether the attestation bridge has everything
// it needs to submit on-chain records.
func (c *Config) AttestationEnabled() bool {
	return c.AttestationContract != "" && c.AttesterPrivateKey != ""
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
