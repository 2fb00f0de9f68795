package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Auth        AuthConfig
	Router      RouterConfig
	Backends    []BackendConfig
	Environment string

	rosterPath string
}

// RosterPath returns the path the backend roster was loaded from, so the
// reload endpoint re-reads the same file.
func (c *Config) RosterPath() string {
	return c.rosterPath
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds API authentication configuration.
// When Secret is empty the auth middleware is disabled.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// RouterConfig holds router-level settings
type RouterConfig struct {
	// HealthCheckInterval bounds how often cached health verdicts are refreshed
	HealthCheckInterval time.Duration

	// AnalyzeRatePerSecond throttles the analyze endpoint
	AnalyzeRatePerSecond float64

	// AnalyzeBurst is the limiter burst size for the analyze endpoint
	AnalyzeBurst int
}

// BackendConfig describes a single configured LLM backend.
// The roster file lists one entry per remote service; credentials may be
// overridden per backend via the AI_<ID>_API_KEY environment variable.
type BackendConfig struct {
	ID             string   `yaml:"id" validate:"required"`
	Kind           string   `yaml:"kind" validate:"required"`
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url" validate:"omitempty,url"`
	Model          string   `yaml:"model" validate:"required"`
	MaxTokens      int      `yaml:"max_tokens" validate:"gte=0"`
	Temperature    *float64 `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
	TimeoutSeconds int      `yaml:"timeout_seconds" validate:"gte=0"`
	Priority       int      `yaml:"priority" validate:"gte=0"`
	Enabled        bool     `yaml:"enabled"`
}

// TemperatureValue returns the sampling temperature, defaulting to 0.3
// when the roster omits the field.
func (b BackendConfig) TemperatureValue() float64 {
	if b.Temperature == nil {
		return 0.3
	}
	return *b.Temperature
}

// Timeout returns the per-request timeout for this backend.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type rosterFile struct {
	Backends []BackendConfig `yaml:"backends"`
}

// Load creates a Config by reading environment variables and the backend
// roster file. The roster path comes from BACKENDS_CONFIG and defaults to
// config/backends.yaml.
func Load() (*Config, error) {
	// Load .env if present; ignore absence
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Auth: AuthConfig{
			Secret:   getEnv("AUTH_JWT_SECRET", ""),
			Issuer:   getEnv("AUTH_JWT_ISSUER", ""),
			Audience: getEnv("AUTH_JWT_AUDIENCE", ""),
		},
		Router: RouterConfig{
			HealthCheckInterval:  getEnvAsDuration("HEALTH_CHECK_INTERVAL", 300*time.Second),
			AnalyzeRatePerSecond: getEnvAsFloat("ANALYZE_RATE_PER_SECOND", 1),
			AnalyzeBurst:         getEnvAsInt("ANALYZE_BURST", 3),
		},
	}

	cfg.rosterPath = getEnv("BACKENDS_CONFIG", "config/backends.yaml")
	backends, err := LoadBackends(cfg.rosterPath)
	if err != nil {
		return nil, err
	}
	cfg.Backends = backends

	return cfg, nil
}

// LoadBackends reads and validates the backend roster file, applies
// environment overrides and defaults, and returns the entries sorted by
// ascending priority (ties keep file order).
func LoadBackends(path string) ([]BackendConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backend roster %s: %w", path, err)
	}
	return ParseBackends(data)
}

// ParseBackends parses roster YAML. Split out from LoadBackends so tests can
// feed literal documents.
func ParseBackends(data []byte) ([]BackendConfig, error) {
	var roster rosterFile
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse backend roster: %w", err)
	}

	validate := validator.New()
	for i := range roster.Backends {
		b := &roster.Backends[i]
		applyDefaults(b)
		applyEnvOverrides(b)
		if err := validate.Struct(b); err != nil {
			return nil, fmt.Errorf("backend %q: %w", b.ID, err)
		}
	}

	sortByPriority(roster.Backends)
	return roster.Backends, nil
}

func applyDefaults(b *BackendConfig) {
	if b.MaxTokens == 0 {
		b.MaxTokens = 1000
	}
	if b.TimeoutSeconds == 0 {
		b.TimeoutSeconds = 30
	}
	if b.Priority == 0 {
		b.Priority = 999
	}
}

func applyEnvOverrides(b *BackendConfig) {
	envKey := "AI_" + strings.ToUpper(strings.ReplaceAll(b.ID, "-", "_")) + "_API_KEY"
	if v := os.Getenv(envKey); v != "" {
		b.APIKey = v
	}
}

func sortByPriority(backends []BackendConfig) {
	sort.SliceStable(backends, func(i, j int) bool {
		return backends[i].Priority < backends[j].Priority
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
