package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendSheets = "sheets"
	BackendScript = "script"
)

var validBackends = []string{BackendMemory, BackendSheets, BackendScript}

// Config is loaded once per process. It never carries the backend endpoint, which lives
// in the settings store.
type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration

	// Settings store
	SettingsDBPath string

	// Backend selection
	DataBackend string
	DataDir     string

	// Google Sheets
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	ComponentsSheet          string
	ProjectsSheet            string
	SuppliersSheet           string

	// Fetching
	FetchTimeout time.Duration
	FetchRetries int
	CacheTTL     time.Duration

	// AMQP; an empty URL disables settings fan-out
	AMQPURL      string
	AMQPExchange string

	// Display
	DisplayLocale  string
	CurrencySuffix string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		SettingsDBPath: getEnv("SETTINGS_DB_PATH", "./data/opsboard.db"),

		DataBackend: getEnv("DATA_BACKEND", BackendScript),
		DataDir:     getEnv("DATA_DIR", ""),

		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		ComponentsSheet:          getEnv("GOOGLE_COMPONENTS_SHEET", "Components"),
		ProjectsSheet:            getEnv("GOOGLE_PROJECTS_SHEET", "Projects"),
		SuppliersSheet:           getEnv("GOOGLE_SUPPLIERS_SHEET", "Suppliers"),

		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 20*time.Second),
		FetchRetries: getEnvInt("FETCH_RETRIES", 2),
		CacheTTL:     getEnvDuration("CACHE_TTL", time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "opsboard.settings"),

		DisplayLocale:  getEnv("DISPLAY_LOCALE", "en-US"),
		CurrencySuffix: getEnv("CURRENCY_SUFFIX", "DA"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if strings.TrimSpace(c.SettingsDBPath) == "" {
		errors = append(errors, "settings database path cannot be empty")
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory does not exist: %s", c.DataDir))
		}
	}

	if c.DataBackend == BackendSheets {
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.DataBackend != BackendMemory {
		for name, tab := range map[string]string{
			"GOOGLE_COMPONENTS_SHEET": c.ComponentsSheet,
			"GOOGLE_PROJECTS_SHEET":   c.ProjectsSheet,
			"GOOGLE_SUPPLIERS_SHEET":  c.SuppliersSheet,
		} {
			if strings.TrimSpace(tab) == "" {
				errors = append(errors, fmt.Sprintf("%s cannot be empty", name))
			}
		}
	}

	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	} else if c.FetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 5 minutes", c.FetchTimeout))
	}

	if c.FetchRetries < 0 || c.FetchRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid fetch retries %d: must be between 0 and 10", c.FetchRetries))
	}

	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := language.Parse(c.DisplayLocale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid display locale '%s': %v", c.DisplayLocale, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Locale returns the parsed display locale, falling back to English.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.DisplayLocale)
	if err != nil {
		return language.English
	}
	return tag
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
