package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	LogLevel      string
	LogFormat     string
	SweepInterval time.Duration
	Timezone      string
	SessionTTL    time.Duration
	NearExpiry    int // days
	TrustProxy    bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment variables
// win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PANTRY_PORT", "8080"),
		DBPath:        getEnv("PANTRY_DB_PATH", "pantry.db"),
		LogLevel:      getEnv("PANTRY_LOG_LEVEL", "info"),
		LogFormat:     getEnv("PANTRY_LOG_FORMAT", "text"),
		SweepInterval: getEnvDuration("PANTRY_SWEEP_INTERVAL", time.Hour),
		Timezone:      getEnv("PANTRY_TIMEZONE", "Local"),
		SessionTTL:    getEnvDuration("PANTRY_SESSION_TTL", 30*24*time.Hour),
		NearExpiry:    getEnvInt("PANTRY_NEAR_EXPIRY_DAYS", 3),
		TrustProxy:    getEnvBool("PANTRY_TRUST_PROXY", false),
	}
}

// Validate returns every problem with the configuration in one error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if f := strings.ToLower(c.LogFormat); f != "" && f != "text" && f != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	}

	if c.SweepInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid sweep interval %v: must be at least 1 minute", c.SweepInterval))
	}

	if c.SessionTTL < time.Hour {
		errs = append(errs, fmt.Sprintf("invalid session ttl %v: must be at least 1 hour", c.SessionTTL))
	}

	if c.NearExpiry < 0 {
		errs = append(errs, fmt.Sprintf("invalid near expiry days %d: must not be negative", c.NearExpiry))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Location resolves the timezone used for calendar periods.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
