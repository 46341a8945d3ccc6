// Package config provides configuration management for the brokerage back office.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// Config represents the application configuration.
type Config struct {
	Ledger LedgerConfig
	Redis  RedisConfig
	Debug  bool
}

// LedgerConfig represents storage and commission policy configuration.
type LedgerConfig struct {
	Root             string
	Store            string
	DBPath           string
	PolicyFile       string
	JournalDir       string
	MetricsFile      string
	Currency         string
	DefaultSalaryCap float64
}

// RedisConfig represents the distributed lock configuration.
// An empty Addr selects the in-process locker.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	LockPrefix string
	LockTTL    time.Duration
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	salaryCap, err := parseFloatEnv("BROKERAGE_DEFAULT_SALARY_CAP", models.DefaultSalaryCap)
	if err != nil {
		return nil, err
	}
	if salaryCap <= 0 {
		return nil, fmt.Errorf("invalid BROKERAGE_DEFAULT_SALARY_CAP: must be positive")
	}

	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	lockTTL, err := parseDurationEnv("LOCK_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	store := strings.ToLower(getEnvOrDefault("BROKERAGE_STORE", StoreSQLite))
	if store != StoreSQLite && store != StoreBolt {
		return nil, fmt.Errorf("invalid BROKERAGE_STORE: %s (expected %s or %s)", store, StoreSQLite, StoreBolt)
	}

	config := &Config{
		Ledger: LedgerConfig{
			Root:             getEnvOrDefault("BROKERAGE_ROOT", "./brokerage-data"),
			Store:            store,
			DBPath:           os.Getenv("BROKERAGE_DB_PATH"),
			PolicyFile:       os.Getenv("BROKERAGE_POLICY_FILE"),
			JournalDir:       os.Getenv("BROKERAGE_JOURNAL_DIR"),
			MetricsFile:      os.Getenv("BROKERAGE_METRICS_FILE"),
			Currency:         getEnvOrDefault("BROKERAGE_CURRENCY", "USD"),
			DefaultSalaryCap: salaryCap,
		},
		Redis: RedisConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         redisDB,
			LockPrefix: getEnvOrDefault("REDIS_LOCK_PREFIX", "brokerage:"),
			LockTTL:    lockTTL,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "ledger":
			switch path[1] {
			case "root":
				value = c.Ledger.Root
			case "dbPath":
				value = c.Ledger.DBPath
			case "policyFile":
				value = c.Ledger.PolicyFile
			case "journalDir":
				value = c.Ledger.JournalDir
			case "metricsFile":
				value = c.Ledger.MetricsFile
			}
		case "redis":
			switch path[1] {
			case "addr":
				value = c.Redis.Addr
			case "lockPrefix":
				value = c.Redis.LockPrefix
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number value for %s: %s", key, value)
	}
	return parsed, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}
	return parsed, nil
}
