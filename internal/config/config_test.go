package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "GENERATOR_BACKEND", "WORKER_COUNT", "CHUNK_TOKENS", "CORPUS_ENCODING", "REQUESTS_PER_SECOND", "JOB_TTL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.GeneratorBackend != BackendOpenChat {
		t.Errorf("expected openchat backend, got %q", cfg.GeneratorBackend)
	}
	if cfg.GeneratorMaxLength != 30000 || cfg.GeneratorTokenLimit != 8192 {
		t.Errorf("unexpected model limits: %d/%d", cfg.GeneratorMaxLength, cfg.GeneratorTokenLimit)
	}
	if cfg.CorpusEncoding != "utf-16" {
		t.Errorf("expected utf-16 corpus, got %q", cfg.CorpusEncoding)
	}
	if cfg.RequestsPerSecond != 1 || cfg.JobTTL != time.Hour {
		t.Errorf("unexpected rate/ttl: %v/%v", cfg.RequestsPerSecond, cfg.JobTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WORKER_COUNT", "7")
	t.Setenv("REQUESTS_PER_SECOND", "2.5")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("CHUNK_TOKENS", "-1")
	cfg := Load()
	if cfg.WorkerCount != 7 {
		t.Errorf("expected 7 workers, got %d", cfg.WorkerCount)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.RequestsPerSecond)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("expected 5s fetch timeout, got %v", cfg.FetchTimeout)
	}
	if cfg.ChunkTokens != 6000 {
		t.Errorf("expected non-positive chunk size to fall back, got %d", cfg.ChunkTokens)
	}
}

func TestValidate(t *testing.T) {
	base := Config{GeneratorBackend: BackendOpenChat, GeneratorURL: "http://x", CorpusEncoding: "utf-16"}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"missing url", func(c *Config) { c.GeneratorURL = "" }, true},
		{"gemini without key", func(c *Config) { c.GeneratorBackend = BackendGemini }, true},
		{"gemini with key", func(c *Config) { c.GeneratorBackend = BackendGemini; c.GeminiAPIKey = "k" }, false},
		{"unknown backend", func(c *Config) { c.GeneratorBackend = "other" }, true},
		{"bad encoding", func(c *Config) { c.CorpusEncoding = "latin-1" }, true},
	}
	for _, tt := range tests {
		c := base
		tt.mutate(&c)
		if err := c.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: wantErr=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestValidateServer_RequiresAPIKey(t *testing.T) {
	c := Config{GeneratorBackend: BackendOpenChat, GeneratorURL: "http://x", CorpusEncoding: "utf-8"}
	if err := c.ValidateServer(); err == nil {
		t.Error("expected error without PAPERSUM_API_KEY")
	}
	c.APIKey = "secret"
	if err := c.ValidateServer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
