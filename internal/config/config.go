// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/jonathan/resume-builder/internal/llm"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvLegacyAPIKey = "VITE_GEMINI_API_KEY"
	EnvModel        = "GEMINI_MODEL"
	EnvPort         = "PORT"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults.
type Config struct {
	// Provider
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`   // Gemini API key
	Model   string `json:"model,omitempty" yaml:"model,omitempty" validate:"omitempty,max=100"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`

	// Retry policy
	MaxAttempts       int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" validate:"gte=0,lte=10"`
	BaseBackoffMS     int `json:"base_backoff_ms,omitempty" yaml:"base_backoff_ms,omitempty" validate:"gte=0,lte=60000"`
	RequestTimeoutSec int `json:"request_timeout_sec,omitempty" yaml:"request_timeout_sec,omitempty" validate:"gte=0,lte=600"`

	// Server and logging
	Port     int    `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	Verbose  bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed debug information
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:             llm.DefaultModel,
		BaseURL:           llm.DefaultBaseURL,
		MaxAttempts:       llm.DefaultMaxAttempts,
		BaseBackoffMS:     int(llm.DefaultBaseBackoff / time.Millisecond),
		RequestTimeoutSec: 30,
		Port:              8080,
		LogLevel:          "info",
	}
}

// LoadConfig loads configuration from a JSON file, or from YAML when the
// extension is .yaml or .yml. Environment variables in YAML files are expanded.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't require an API key; its absence is reported when a
// summary is requested.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("'%s' failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("'%s' failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.BaseBackoffMS == 0 {
		result.BaseBackoffMS = defaults.BaseBackoffMS
	}
	if result.RequestTimeoutSec == 0 {
		result.RequestTimeoutSec = defaults.RequestTimeoutSec
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overlays values from the environment, read through getenv.
// Values already set in the config are kept.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if c.APIKey == "" {
		c.APIKey = getenv(EnvAPIKey)
	}
	if c.APIKey == "" {
		c.APIKey = getenv(EnvLegacyAPIKey)
	}
	if c.Model == "" {
		c.Model = getenv(EnvModel)
	}
	if c.Port == 0 {
		if port, err := strconv.Atoi(getenv(EnvPort)); err == nil {
			c.Port = port
		}
	}
}

// Endpoint returns the provider endpoint configuration.
func (c *Config) Endpoint() *llm.Config {
	endpoint := llm.DefaultConfig()
	if c.Model != "" {
		endpoint = endpoint.WithModel(c.Model)
	}
	if c.BaseURL != "" {
		endpoint = endpoint.WithBaseURL(c.BaseURL)
	}
	return endpoint
}

// RetryConfig returns the orchestrator settings.
func (c *Config) RetryConfig() llm.RetryConfig {
	return llm.RetryConfig{
		MaxAttempts: c.MaxAttempts,
		BaseBackoff: time.Duration(c.BaseBackoffMS) * time.Millisecond,
	}
}

// RequestTimeout returns the per-generation timeout, or 0 for none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}
