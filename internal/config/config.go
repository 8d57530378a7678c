package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Data backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP server
	Port               string
	RateLimitPerMinute int

	// Collections
	DataBackend  string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets journal
	GoogleSpreadsheetID      string
	GoogleJournalSheet       string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	GoogleOAuthClientFile    string
	GoogleOAuthClientJSON    string
	GoogleOAuthTokenFile     string
	GoogleOAuthTokenJSON     string

	// Shell
	APIBaseURL string
	// WebDir, when set, serves templates and stylesheets from disk instead
	// of the embedded copies.
	WebDir string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		DataBackend:  getEnv("DATA_BACKEND", BackendMemory),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/haushalt.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "haushalt"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "haushalt_journal"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleJournalSheet:       getEnv("GOOGLE_JOURNAL_SHEET", "Journal"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleOAuthClientFile:    getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthClientJSON:    getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenFile:     getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthTokenJSON:     getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		WebDir:     getEnv("WEB_DIR", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the settings every binary shares and returns all problems
// at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	validBackends := []string{BackendMemory, BackendSQLite}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if c.SQLiteDBPath != ":memory:" {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.APIBaseURL != "" {
		if u, err := url.Parse(c.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid API base URL '%s': must be an http(s) URL", c.APIBaseURL))
		}
	}

	if c.WebDir != "" {
		if info, err := os.Stat(c.WebDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("web directory '%s' does not exist", c.WebDir))
		}
	}

	return joinErrors(errors)
}

// ValidateJournal checks what the journal worker needs on top of Validate:
// a broker, a spreadsheet and one way to authenticate against it.
func (c *Config) ValidateJournal() error {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the journal worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the journal worker")
	}
	if c.GoogleJournalSheet == "" {
		errors = append(errors, "Google journal sheet name cannot be empty")
	}

	hasServiceAccount := c.GoogleServiceAccountFile != "" || c.GoogleServiceAccountJSON != ""
	hasClient := c.GoogleOAuthClientFile != "" || c.GoogleOAuthClientJSON != ""
	hasToken := c.GoogleOAuthTokenFile != "" || c.GoogleOAuthTokenJSON != ""
	switch {
	case hasServiceAccount:
	case hasClient && hasToken:
	case hasClient:
		errors = append(errors, "either GOOGLE_OAUTH_TOKEN_FILE or GOOGLE_OAUTH_TOKEN_JSON must be provided with OAuth client credentials")
	default:
		errors = append(errors, "Google credentials missing: set GOOGLE_SERVICE_ACCOUNT_FILE/JSON or OAuth client and token")
	}

	for _, f := range []struct{ what, path string }{
		{"service account file", c.GoogleServiceAccountFile},
		{"OAuth client file", c.GoogleOAuthClientFile},
		{"OAuth token file", c.GoogleOAuthTokenFile},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google %s does not exist: %s", f.what, f.path))
		}
	}

	return joinErrors(errors)
}

// UsesServiceAccount reports whether the journal authenticates as a service
// account rather than with a user token.
func (c *Config) UsesServiceAccount() bool {
	return c.GoogleServiceAccountFile != "" || c.GoogleServiceAccountJSON != ""
}

func joinErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
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
