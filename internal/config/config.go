// Package config holds the engine configuration surface.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTemplate is the query template used for roles without a
// registered template.
const DefaultTemplate = "{topic} current trends opinions"

// Config is an engine configuration snapshot. The engine copies it at
// construction and never reads it again, so mutating a Config after
// passing it to engine.New has no effect.
type Config struct {
	// Result handling
	MaxSearchResults int     `json:"max_search_results"`
	MinConfidence    float64 `json:"min_confidence_threshold"`

	// Provider call limits
	SearchTimeoutSec     int `json:"search_timeout_seconds"`
	MaxSearchesPerMinute int `json:"max_searches_per_minute"`
	MaxSearchesPerHour   int `json:"max_searches_per_hour"`

	// Content filtering
	FilterAdultContent bool `json:"filter_adult_content"`
	FilterSpam         bool `json:"filter_spam"`

	// Caching. CacheMaxEntries of 0 means the default cap; a negative
	// value removes the cap entirely.
	EnableCaching   bool   `json:"enable_caching"`
	CacheTTLSec     int    `json:"cache_ttl_seconds"`
	CacheDirectory  string `json:"cache_directory,omitempty"`
	CacheMaxEntries int    `json:"cache_max_entries"`

	// Query generation
	DefaultRole        string            `json:"default_role"`
	RoleQueryTemplates map[string]string `json:"role_query_templates,omitempty"`

	// Observability
	LogSearches bool   `json:"log_searches"`
	LogLevel    string `json:"log_level"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxSearchResults:     20,
		MinConfidence:        0.3,
		SearchTimeoutSec:     10,
		MaxSearchesPerMinute: 10,
		MaxSearchesPerHour:   100,
		FilterAdultContent:   true,
		FilterSpam:           true,
		EnableCaching:        true,
		CacheTTLSec:          3600,
		CacheMaxEntries:      512,
		DefaultRole:          "expert",
		LogSearches:          true,
		LogLevel:             "info",
	}
}

// SearchTimeout returns the per-provider-call deadline.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutSec) * time.Second
}

// CacheTTL returns the cache entry expiry duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".zeitgeist", "config.json")
}

// Load reads config from the given path (ConfigPath() if empty).
// Precedence, lowest to highest: defaults, environment, file. Values set
// programmatically on the returned Config win over all of these.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv fills in config fields from ZEITGEIST_* environment variables.
// Malformed values are ignored rather than failing the load.
func (c *Config) ApplyEnv() {
	envInt("ZEITGEIST_MAX_RESULTS", &c.MaxSearchResults)
	envFloat("ZEITGEIST_MIN_CONFIDENCE", &c.MinConfidence)
	envInt("ZEITGEIST_SEARCH_TIMEOUT", &c.SearchTimeoutSec)
	envInt("ZEITGEIST_MAX_SEARCHES_PER_MINUTE", &c.MaxSearchesPerMinute)
	envInt("ZEITGEIST_MAX_SEARCHES_PER_HOUR", &c.MaxSearchesPerHour)
	envBool("ZEITGEIST_FILTER_ADULT", &c.FilterAdultContent)
	envBool("ZEITGEIST_FILTER_SPAM", &c.FilterSpam)
	envBool("ZEITGEIST_ENABLE_CACHE", &c.EnableCaching)
	envInt("ZEITGEIST_CACHE_TTL", &c.CacheTTLSec)
	envInt("ZEITGEIST_CACHE_MAX_ENTRIES", &c.CacheMaxEntries)
	envBool("ZEITGEIST_LOG_SEARCHES", &c.LogSearches)

	if v := os.Getenv("ZEITGEIST_CACHE_DIR"); v != "" {
		c.CacheDirectory = v
	}
	if v := os.Getenv("ZEITGEIST_DEFAULT_ROLE"); v != "" {
		c.DefaultRole = v
	}
	if v := os.Getenv("ZEITGEIST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for construction-time errors.
// Invalid configuration is fatal: the engine refuses to start rather
// than misbehaving at request time.
func (c *Config) Validate() error {
	if c.MaxSearchResults <= 0 {
		return fmt.Errorf("max_search_results must be positive, got %d", c.MaxSearchResults)
	}
	if c.SearchTimeoutSec <= 0 {
		return fmt.Errorf("search_timeout_seconds must be positive, got %d", c.SearchTimeoutSec)
	}
	if c.CacheTTLSec < 0 {
		return fmt.Errorf("cache_ttl_seconds must not be negative, got %d", c.CacheTTLSec)
	}
	if c.MaxSearchesPerMinute <= 0 {
		return fmt.Errorf("max_searches_per_minute must be positive, got %d", c.MaxSearchesPerMinute)
	}
	if c.MaxSearchesPerHour <= 0 {
		return fmt.Errorf("max_searches_per_hour must be positive, got %d", c.MaxSearchesPerHour)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence_threshold must be in [0,1], got %g", c.MinConfidence)
	}
	if strings.TrimSpace(c.DefaultRole) == "" {
		return fmt.Errorf("default_role must not be empty")
	}
	for role, tmpl := range c.RoleQueryTemplates {
		if !strings.Contains(tmpl, "{topic}") {
			return fmt.Errorf("template for role %q missing {topic} placeholder", role)
		}
	}
	return nil
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
