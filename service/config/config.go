package config

import (
	"fmt"
	"os"
	"time"
)

// DefaultSolanaRPCURL is the public mainnet endpoint used when no RPC URL is
// configured. Public endpoints are heavily rate limited; production
// deployments should supply a dedicated endpoint.
const DefaultSolanaRPCURL = "https://api.mainnet-beta.solana.com"

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Database configuration
	DatabaseURL string

	// Solana configuration
	SolanaRPCURL string
	RPCTimeout   time.Duration

	// Auth configuration
	JWTSecret string
	TokenTTL  time.Duration

	// NATS configuration (optional; event publishing is disabled when empty)
	NATSURL string

	// MerchantWallet is the default payment recipient used when a checkout
	// request does not name one. Optional.
	MerchantWallet string
}

// Load reads configuration from environment variables and validates all
// required fields. Returns an error if any required configuration is missing
// or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required"))
	}

	cfg.SolanaRPCURL = getEnvOrDefault("SOLANA_RPC_URL", DefaultSolanaRPCURL)

	rpcTimeout, err := parseDuration("RPC_TIMEOUT", "30s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.RPCTimeout = rpcTimeout
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET is required"))
	}

	tokenTTL, err := parseDuration("TOKEN_TTL", "30m")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.TokenTTL = tokenTTL
	}

	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.MerchantWallet = os.Getenv("MERCHANT_WALLET")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DatabaseURL is required"))
	}

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("JWTSecret is required"))
	}

	if c.RPCTimeout < time.Second {
		errs = append(errs, fmt.Errorf("RPCTimeout must be at least 1 second"))
	}

	if c.TokenTTL < time.Minute {
		errs = append(errs, fmt.Errorf("TokenTTL must be at least 1 minute"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}
