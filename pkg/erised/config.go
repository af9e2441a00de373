// Package erised provides the official Go client for the Erised visual memory service.
package erised

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the hosted Erised API deployment.
const DefaultBaseURL = "https://viraat--erised-erisedapi-serve.modal.run"

// DefaultTimeout is the per-request timeout applied when Config.Timeout is zero.
const DefaultTimeout = 120 * time.Second

// Config contains the complete configuration for an Erised client.
//
// Only APIKey is required. Zero values for the remaining fields select the
// documented defaults, so multiple independently configured clients can
// coexist in one process; nothing here is process-wide.
//
// Example:
//
//	config := &erised.Config{
//	    APIKey:  os.Getenv("ERISED_API_KEY"),
//	    Timeout: 30 * time.Second,
//	}
//	client, err := erised.NewClient(config)
type Config struct {
	// APIKey authenticates every request (required).
	APIKey string

	// BaseURL is the root URL of the Erised API.
	// Default: DefaultBaseURL. Trailing slashes are ignored.
	BaseURL string

	// Timeout is the hard upper bound for each request, including reading
	// the response body. Zero selects DefaultTimeout; negative values are
	// rejected by NewClient.
	Timeout time.Duration

	// HTTPClient is a custom HTTP client (uses a default client with
	// Timeout applied if nil). When set, its own timeout governs and
	// Timeout is ignored.
	HTTPClient *http.Client

	// Logger receives debug logging for every request/response exchange.
	// Nil disables logging.
	Logger *zerolog.Logger
}

// Validate validates the configuration.
//
// Checks that all required fields are set:
//   - APIKey must be present
//   - Timeout must not be negative
//
// Returns a ConfigError if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return &ConfigError{Field: "api_key", Reason: "API key is required"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Reason: "timeout must be positive"}
	}
	return nil
}

// envConfig mirrors Config for environment variable parsing.
type envConfig struct {
	APIKey  string        `env:"ERISED_API_KEY"`
	BaseURL string        `env:"ERISED_API_URL"`
	Timeout time.Duration `env:"ERISED_TIMEOUT" envDefault:"120s"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Locates an env file via FindEnvFile (ERISED_ENV_FILE override, then
//     .env/.env.example up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - ERISED_API_KEY: API key for the Erised service
//   - ERISED_API_URL: API base URL (default: the hosted deployment)
//   - ERISED_TIMEOUT: per-request timeout as a Go duration (default: 120s)
//   - ERISED_ENV_FILE: explicit path to the env file to load
//
// NewClient never reads the environment on its own; this loader is the
// explicit opt-in path for environment-driven configuration.
//
// Example:
//
//	config, err := erised.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := erised.NewClient(config)
func LoadConfigFromEnv() (*Config, error) {
	// FindEnvFile already covers the current directory, so a miss means
	// there is nothing to load and the process environment stands alone.
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	}

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return nil, &ConfigError{Field: "environment", Reason: err.Error()}
	}

	return &Config{
		APIKey:  ec.APIKey,
		BaseURL: ec.BaseURL,
		Timeout: ec.Timeout,
	}, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, &ConfigError{Field: "env_file", Reason: err.Error()}
	}
	return LoadConfigFromEnv()
}

// FindEnvFile locates the env file used by LoadConfigFromEnv.
//
// When ERISED_ENV_FILE is set it names the file explicitly and no search
// happens; a dangling override reports not-found rather than silently
// picking up some other file. Otherwise the search starts in the current
// directory and walks up to 5 parent directories, returning the first .env
// or .env.example found.
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if override := os.Getenv("ERISED_ENV_FILE"); override != "" {
		if _, err := os.Stat(override); err == nil {
			return override, true
		}
		return "", false
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i <= 5; i++ {
		for _, name := range []string{".env", ".env.example"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
