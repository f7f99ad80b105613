// Package config loads and validates application configuration from an
// optional YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Metabase      MetabaseConfig      `yaml:"metabase"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes transport and HTTP listener settings.
type ServerConfig struct {
	// Transport is one of "stdio", "sse", or "http" (streamable HTTP).
	Transport       string        `yaml:"transport"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MetabaseConfig describes the Metabase instance and its credentials.
// Either APIKey or both Email and Password must be set.
type MetabaseConfig struct {
	URL      string        `yaml:"url"`
	APIKey   string        `yaml:"api_key"`
	Email    string        `yaml:"email"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Transport:       "stdio",
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Metabase: MetabaseConfig{
			Timeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load reads an optional YAML config file, applies environment variable
// overrides, and validates required fields. An empty path skips the file
// and configures from environment alone.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	switch c.Server.Transport {
	case "stdio", "sse", "http":
	default:
		errs = append(errs, fmt.Sprintf("server.transport %q is not one of stdio, sse, http", c.Server.Transport))
	}
	if c.Metabase.URL == "" {
		errs = append(errs, "metabase.url is required")
	}
	if c.Metabase.APIKey == "" && (c.Metabase.Email == "" || c.Metabase.Password == "") {
		errs = append(errs, "metabase requires api_key or both email and password")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads environment variables and overrides config values.
// The Metabase credentials use the conventional unprefixed names; server and
// observability settings use the MBMCP_ prefix.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("METABASE_URL"); v != "" {
		cfg.Metabase.URL = v
	}
	if v := os.Getenv("METABASE_API_KEY"); v != "" {
		cfg.Metabase.APIKey = v
	}
	if v := os.Getenv("METABASE_USER_EMAIL"); v != "" {
		cfg.Metabase.Email = v
	}
	if v := os.Getenv("METABASE_PASSWORD"); v != "" {
		cfg.Metabase.Password = v
	}
	if v := os.Getenv("MBMCP_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("MBMCP_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MBMCP_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MBMCP_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}
