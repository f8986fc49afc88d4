package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Server
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	// Storage
	DataBackend    string
	SQLiteDBPath   string
	SeedSampleData bool

	// Overspending
	OverspendThreshold     core.Money
	OverspendIncludeIncome bool

	// AMQP (empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror used by the worker
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleAlertsSheetName    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Snapshot cache
	CacheTTL time.Duration

	// Problems found while reading values; reported by Validate.
	parseErrors []string
}

// LoadEnvFile loads variables from a .env file when one exists. Values
// already present in the environment win.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8081"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		DataBackend:    strings.ToLower(getEnv("DATA_BACKEND", "memory")),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		SeedSampleData: getEnvBool("SEED_SAMPLE_DATA", true),

		OverspendThreshold:     core.DefaultOverspendThreshold,
		OverspendIncludeIncome: getEnvBool("OVERSPEND_INCLUDE_INCOME", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "fintrack_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleAlertsSheetName:    getEnv("GOOGLE_ALERTS_SHEET_NAME", "Alerts"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		CacheTTL: getEnvDuration("SNAPSHOT_CACHE_TTL", time.Minute),
	}

	if raw := strings.TrimSpace(os.Getenv("OVERSPEND_THRESHOLD")); raw != "" {
		m, err := core.ParseMoney(raw)
		if err != nil || m.Cents == 0 {
			cfg.parseErrors = append(cfg.parseErrors, fmt.Sprintf("invalid overspend threshold '%s': must be a positive amount", raw))
		} else {
			cfg.OverspendThreshold = m
		}
	}

	return cfg
}

// OverspendRule builds the alert rule from the configured values.
func (c *Config) OverspendRule() core.OverspendRule {
	return core.OverspendRule{
		Threshold:     c.OverspendThreshold,
		IncludeIncome: c.OverspendIncludeIncome,
	}
}

// AMQPEnabled reports whether events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether the worker should mirror to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	problems := append([]string(nil), c.parseErrors...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	problems = append(problems, c.storageProblems()...)

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			problems = append(problems, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			problems = append(problems, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheets mirror")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				problems = append(problems, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid request timeout %v: must be positive", c.RequestTimeout))
	}
	if c.CacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid snapshot cache TTL %v: must not be negative", c.CacheTTL))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

// ValidateStorage checks only what the store and the overspend rule need.
// Offline tools use it so unrelated server settings do not block them.
func (c *Config) ValidateStorage() error {
	problems := append([]string(nil), c.parseErrors...)
	problems = append(problems, c.storageProblems()...)
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func (c *Config) storageProblems() []string {
	var problems []string
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}
	return problems
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
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
