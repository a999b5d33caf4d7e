// Package config loads the reportpipe YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// apiKeyEnv overrides llm.api_key when set.
const apiKeyEnv = "REPORTPIPE_LLM_API_KEY"

// Config is the top-level configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Fetch       FetchConfig       `yaml:"fetch"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Storage     StorageConfig     `yaml:"storage"`
	Log         LogConfig         `yaml:"log"`
	Output      OutputConfig      `yaml:"output"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"` // prefix for download URLs
}

// FetchConfig configures the source fetcher.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
	MaxBytes       int64  `yaml:"max_bytes"`
}

// Timeout returns the fetch timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// LLMConfig configures the optional enrichment model. Enrichment is off
// when APIKey is empty.
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	MaxPromptWords int    `yaml:"max_prompt_words"`
}

// Enabled reports whether an LLM is configured.
func (l LLMConfig) Enabled() bool {
	return l.APIKey != ""
}

// ConcurrencyConfig rate-limits LLM calls.
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// StorageConfig selects the report store.
type StorageConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite or postgres
	DSN    string `yaml:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// OutputConfig configures where the CLI writes artifacts.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns a configuration with every field set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			BaseURL: "http://localhost:8080",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			UserAgent:      "Mozilla/5.0 (ReportPipe/1.0)",
			MaxBytes:       10 << 20,
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			MaxPromptWords: 800,
		},
		Concurrency: ConcurrencyConfig{
			QPS: 1,
			RPM: 30,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path over the defaults. An empty path returns defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if key := os.Getenv(apiKeyEnv); key != "" {
		cfg.LLM.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive")
	}
	return nil
}
