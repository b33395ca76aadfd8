package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Text generation
	GeneratorBackend    string // "openchat" or "gemini"
	GeneratorURL        string
	GeneratorModelID    string
	GeneratorModelName  string
	GeneratorMaxLength  int
	GeneratorTokenLimit int
	GeneratorTimeout    time.Duration
	GeminiAPIKey        string
	GeminiModel         string
	RequestsPerSecond   float64

	// Worker pool
	WorkerCount           int
	MaxQueueSize          int
	MaxConcurrentGenerate int
	MaxConcurrentFetch    int

	// Upload limits
	MaxUploadBytes int64

	// Chunking
	ChunkTokens  int
	ChunkOverlap int

	// Corpus storage
	CorpusDir      string
	CorpusEncoding string

	// Page fetching
	FetchCacheDir string
	FetchCacheTTL time.Duration
	FetchTimeout  time.Duration

	// Job state
	JobTTL time.Duration
}

const (
	BackendOpenChat = "openchat"
	BackendGemini   = "gemini"
)

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PAPERSUM_API_KEY"),

		GeneratorBackend:    envOr("GENERATOR_BACKEND", BackendOpenChat),
		GeneratorURL:        envOr("GENERATOR_URL", "https://openchat.team/api/chat"),
		GeneratorModelID:    envOr("GENERATOR_MODEL_ID", "openchat_v3.2_mistral"),
		GeneratorModelName:  envOr("GENERATOR_MODEL_NAME", "OpenChat Aura"),
		GeneratorMaxLength:  envInt("GENERATOR_MAX_LENGTH", 30000),
		GeneratorTokenLimit: envInt("GENERATOR_TOKEN_LIMIT", 8192),
		GeneratorTimeout:    envDuration("GENERATOR_TIMEOUT", 120*time.Second),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		RequestsPerSecond:   envFloat("REQUESTS_PER_SECOND", 1),

		WorkerCount:           envInt("WORKER_COUNT", 2),
		MaxQueueSize:          envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentGenerate: envInt("MAX_CONCURRENT_GENERATE", 8),
		MaxConcurrentFetch:    envInt("MAX_CONCURRENT_FETCH", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		ChunkTokens:  envInt("CHUNK_TOKENS", 6000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 200),

		CorpusDir:      envOr("CORPUS_DIR", "data"),
		CorpusEncoding: envOr("CORPUS_ENCODING", "utf-16"),

		FetchCacheDir: os.Getenv("FETCH_CACHE_DIR"),
		FetchCacheTTL: envDuration("FETCH_CACHE_TTL", 24*time.Hour),
		FetchTimeout:  envDuration("FETCH_TIMEOUT", 60*time.Second),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentGenerate <= 0 {
		cfg.MaxConcurrentGenerate = 8
	}
	if cfg.MaxConcurrentFetch <= 0 {
		cfg.MaxConcurrentFetch = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.ChunkTokens <= 0 {
		cfg.ChunkTokens = 6000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.GeneratorTimeout <= 0 {
		cfg.GeneratorTimeout = 120 * time.Second
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 60 * time.Second
	}
	if cfg.FetchCacheTTL <= 0 {
		cfg.FetchCacheTTL = 24 * time.Hour
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks what every entry point needs to talk to a generator.
func (c Config) Validate() error {
	switch c.GeneratorBackend {
	case BackendOpenChat:
		if c.GeneratorURL == "" {
			return fmt.Errorf("GENERATOR_URL is required")
		}
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
		}
	default:
		return fmt.Errorf("unknown GENERATOR_BACKEND %q", c.GeneratorBackend)
	}
	switch c.CorpusEncoding {
	case "utf-8", "utf8", "utf-16", "utf16":
	default:
		return fmt.Errorf("unsupported CORPUS_ENCODING %q", c.CorpusEncoding)
	}
	return nil
}

// ValidateServer adds the checks only the HTTP server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("PAPERSUM_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
