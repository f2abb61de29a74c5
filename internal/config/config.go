// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port            int
	LogLevel        string
	DevMode         bool
	Seed            uint64  // Base seed for session RNGs (0 = derive per session)
	DefaultTrials   int     // Trials per bulk run when the caller does not specify
	PrepareInterval int     // Continuous re-preparation tick interval, in seconds
	InvertB         bool    // Invert apparatus B outcomes by default (singlet reads as agreement)
	ThetaA          float64 // Default apparatus A orientation, degrees
	PhiA            float64
	ThetaB          float64 // Default apparatus B orientation, degrees
	PhiB            float64
}

// Load reads configuration from environment variables.
// A .env file in the working directory is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("QSIM_PORT", 8001),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		Seed:            uint64(getEnvAsInt("QSIM_SEED", 0)),
		DefaultTrials:   getEnvAsInt("QSIM_TRIALS", 100),
		PrepareInterval: getEnvAsInt("QSIM_PREPARE_INTERVAL", 1),
		InvertB:         getEnvAsBool("QSIM_INVERT", true),
		ThetaA:          getEnvAsFloat("QSIM_THETA_A", 0),
		PhiA:            getEnvAsFloat("QSIM_PHI_A", 0),
		ThetaB:          getEnvAsFloat("QSIM_THETA_B", 0),
		PhiB:            getEnvAsFloat("QSIM_PHI_B", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DefaultTrials <= 0 {
		return fmt.Errorf("default trial count must be positive, got %d", c.DefaultTrials)
	}
	if c.PrepareInterval <= 0 {
		return fmt.Errorf("preparation interval must be positive, got %d", c.PrepareInterval)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
