package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aussiebroadwan/budadmin/pkg/httpx"
	"gopkg.in/yaml.v3"
)

// MasterKeyEnv holds master key material inline when no key file is set.
const MasterKeyEnv = "ADMIN_MASTER_KEY"

type Config struct {
	APIBaseURL     string        // Catalog API base URL (default: http://localhost:8000)
	APITimeout     time.Duration // Per-request timeout (default: 30s)
	RefreshTimeout time.Duration // Bound on a shared token refresh (default: 30s)
	SessionFile    string        // SQLite file holding the session, ":memory:" for none (default: <user config dir>/budadmin/session.db)
	MasterKeyPath  string        // Optional: file with master key material for sealing tokens at rest
	RateLimit      httpx.RateLimitConfig
	Env            string // Environment (dev, staging, prod) (default: prod)
	LogLevel       string // Log level (debug, info, warn, error) (default: warn)
	LogFormat      string // Log format (json, text) (default: text)
}

// fileConfig is the optional YAML profile named by ADMIN_CONFIG_FILE. Every
// field is optional; environment variables win over it.
type fileConfig struct {
	APIBaseURL     string `yaml:"api_base_url"`
	APITimeout     string `yaml:"api_timeout"`
	RefreshTimeout string `yaml:"refresh_timeout"`
	SessionFile    string `yaml:"session_file"`
	MasterKeyPath  string `yaml:"master_key_path"`
	RateLimit      struct {
		Requests  *int `yaml:"requests"`
		WindowSec *int `yaml:"window_sec"`
		Burst     *int `yaml:"burst"`
	} `yaml:"rate_limit"`
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "http://localhost:8000",
		APITimeout:     30 * time.Second,
		RefreshTimeout: 30 * time.Second,
		SessionFile:    defaultSessionFile(),
		RateLimit:      httpx.DefaultRateLimit,
		Env:            "prod",
		LogLevel:       "warn",
		LogFormat:      "text",
	}
}

// LoadConfig builds the configuration from defaults, then the YAML profile
// named by ADMIN_CONFIG_FILE if any, then environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("ADMIN_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.APIBaseURL = getEnvOrDefault("ADMIN_API_BASE_URL", cfg.APIBaseURL)
	cfg.APITimeout = getEnvDurationOrDefault("ADMIN_API_TIMEOUT", cfg.APITimeout)
	cfg.RefreshTimeout = getEnvDurationOrDefault("ADMIN_REFRESH_TIMEOUT", cfg.RefreshTimeout)
	cfg.SessionFile = getEnvOrDefault("ADMIN_SESSION_FILE", cfg.SessionFile)
	cfg.MasterKeyPath = getEnvOrDefault("ADMIN_MASTER_KEY_PATH", cfg.MasterKeyPath)
	cfg.RateLimit = httpx.ParseRateLimitFromEnv("ADMIN", cfg.RateLimit)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)

	if debug, _ := strconv.ParseBool(os.Getenv("ADMIN_DEBUG")); debug {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.APIBaseURL != "" {
		c.APIBaseURL = fc.APIBaseURL
	}
	if fc.APITimeout != "" {
		d, err := time.ParseDuration(fc.APITimeout)
		if err != nil {
			return fmt.Errorf("config file %s: api_timeout: %w", path, err)
		}
		c.APITimeout = d
	}
	if fc.RefreshTimeout != "" {
		d, err := time.ParseDuration(fc.RefreshTimeout)
		if err != nil {
			return fmt.Errorf("config file %s: refresh_timeout: %w", path, err)
		}
		c.RefreshTimeout = d
	}
	if fc.SessionFile != "" {
		c.SessionFile = fc.SessionFile
	}
	if fc.MasterKeyPath != "" {
		c.MasterKeyPath = fc.MasterKeyPath
	}
	if fc.RateLimit.Requests != nil {
		c.RateLimit.RequestsPerWindow = *fc.RateLimit.Requests
	}
	if fc.RateLimit.WindowSec != nil && *fc.RateLimit.WindowSec > 0 {
		c.RateLimit.Window = time.Duration(*fc.RateLimit.WindowSec) * time.Second
	}
	if fc.RateLimit.Burst != nil && *fc.RateLimit.Burst > 0 {
		c.RateLimit.Burst = *fc.RateLimit.Burst
	}
	if fc.Env != "" {
		c.Env = fc.Env
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		c.LogFormat = fc.LogFormat
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".budadmin", "session.db")
	}
	return filepath.Join(dir, "budadmin", "session.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "30s", "2m")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
