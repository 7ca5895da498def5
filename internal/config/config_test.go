package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max results", func(c *Config) { c.MaxSearchResults = 0 }},
		{"negative timeout", func(c *Config) { c.SearchTimeoutSec = -1 }},
		{"negative ttl", func(c *Config) { c.CacheTTLSec = -1 }},
		{"zero per-minute budget", func(c *Config) { c.MaxSearchesPerMinute = 0 }},
		{"zero per-hour budget", func(c *Config) { c.MaxSearchesPerHour = 0 }},
		{"threshold too high", func(c *Config) { c.MinConfidence = 1.5 }},
		{"threshold negative", func(c *Config) { c.MinConfidence = -0.1 }},
		{"empty default role", func(c *Config) { c.DefaultRole = "  " }},
		{"template without placeholder", func(c *Config) {
			c.RoleQueryTemplates = map[string]string{"pundit": "hot takes"}
		}},
	}

	for _, tc := range tests {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SearchTimeoutSec = 15
	cfg.CacheTTLSec = 3600

	if cfg.SearchTimeout() != 15*time.Second {
		t.Errorf("unexpected search timeout: %v", cfg.SearchTimeout())
	}
	if cfg.CacheTTL() != time.Hour {
		t.Errorf("unexpected cache ttl: %v", cfg.CacheTTL())
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ZEITGEIST_MAX_RESULTS", "7")
	t.Setenv("ZEITGEIST_MIN_CONFIDENCE", "0.55")
	t.Setenv("ZEITGEIST_FILTER_SPAM", "false")
	t.Setenv("ZEITGEIST_CACHE_DIR", "/tmp/zg-cache")
	t.Setenv("ZEITGEIST_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.MaxSearchResults != 7 {
		t.Errorf("expected 7 max results, got %d", cfg.MaxSearchResults)
	}
	if cfg.MinConfidence != 0.55 {
		t.Errorf("expected 0.55 threshold, got %g", cfg.MinConfidence)
	}
	if cfg.FilterSpam {
		t.Error("expected spam filter disabled")
	}
	if cfg.CacheDirectory != "/tmp/zg-cache" {
		t.Errorf("unexpected cache dir: %s", cfg.CacheDirectory)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestApplyEnvIgnoresMalformed(t *testing.T) {
	t.Setenv("ZEITGEIST_MAX_RESULTS", "lots")
	t.Setenv("ZEITGEIST_FILTER_ADULT", "kinda")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.MaxSearchResults != DefaultConfig().MaxSearchResults {
		t.Errorf("malformed int should be ignored, got %d", cfg.MaxSearchResults)
	}
	if cfg.FilterAdultContent != DefaultConfig().FilterAdultContent {
		t.Error("malformed bool should be ignored")
	}
}

func TestFileOverridesEnv(t *testing.T) {
	t.Setenv("ZEITGEIST_MAX_RESULTS", "5")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"max_search_results": 9}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxSearchResults != 9 {
		t.Errorf("file value should win over env, got %d", cfg.MaxSearchResults)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.MaxSearchResults != DefaultConfig().MaxSearchResults {
		t.Error("expected defaults for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	cfg.MaxSearchResults = 33
	cfg.RoleQueryTemplates = map[string]string{"historian": "{topic} historical parallels"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.MaxSearchResults != 33 {
		t.Errorf("expected 33, got %d", loaded.MaxSearchResults)
	}
	if loaded.RoleQueryTemplates["historian"] != "{topic} historical parallels" {
		t.Error("custom template did not survive round trip")
	}
}
