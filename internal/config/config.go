package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => console, false => JSON
	LogFile   string // optional, rotated by lumberjack

	// Generative AI
	GeminiAPIKey    string // empty => generative tier and enrichment are silent no-ops
	GeminiModel     string // JSON generation (generative-ai-go)
	SearchModel     string // search-grounded lookups and studio chat (genai SDK)
	ImageModel      string
	GenerateTimeout time.Duration

	// Discovery
	WebhookURL       string        // empty => webhook tier is skipped
	WebhookTimeout   time.Duration // per attempt
	WebhookRetries   int
	CacheTTL         time.Duration // fixed one hour unless overridden
	PollInterval     time.Duration // trending/latest refresh
	EnrichInterval   time.Duration // 0 => no periodic enrichment
	EnrichWorkers    int
	ImportMaxDaysOld int

	// Storage
	RedisAddr     string // empty => in-process cache
	RedisPassword string
	RedisDB       int
	PostgresDSN   string // empty => in-process mirror

	GitHubToken       string
	GitHubPerPage     int  // search results per import
	GitHubCommitCheck bool // drop repos whose recent commits only touch README

	AdminEmails []string // emails granted the admin role on simulated login
}

// Load 读取 .env (如果存在) 和环境变量
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		ListenAddr:      getenv("HUB_LISTEN_ADDR", ":8080"),
		ShutdownTimeout: mustDuration("HUB_SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("HUB_LOG_LEVEL", "info"),
		PrettyLog: mustBool("HUB_PRETTY_LOG", false),
		LogFile:   getenv("HUB_LOG_FILE", ""),

		GeminiAPIKey:    getenv("GEMINI_API_KEY", ""),
		GeminiModel:     getenv("HUB_GEMINI_MODEL", "gemini-2.5-flash-lite"),
		SearchModel:     getenv("HUB_SEARCH_MODEL", "gemini-2.5-flash"),
		ImageModel:      getenv("HUB_IMAGE_MODEL", "imagen-3.0-generate-002"),
		GenerateTimeout: mustDuration("HUB_GENERATE_TIMEOUT", 30*time.Second),

		WebhookURL:       getenv("HUB_WEBHOOK_URL", ""),
		WebhookTimeout:   mustDuration("HUB_WEBHOOK_TIMEOUT", 10*time.Second),
		WebhookRetries:   getenvInt("HUB_WEBHOOK_RETRIES", 1),
		CacheTTL:         mustDuration("HUB_CACHE_TTL", time.Hour),
		PollInterval:     mustDuration("HUB_POLL_INTERVAL", 60*time.Second),
		EnrichInterval:   mustDuration("HUB_ENRICH_INTERVAL", 0),
		EnrichWorkers:    getenvInt("HUB_ENRICH_WORKERS", 3),
		ImportMaxDaysOld: getenvInt("HUB_IMPORT_MAX_DAYS_OLD", 30),

		RedisAddr:     getenv("HUB_REDIS_ADDR", ""),
		RedisPassword: getenv("HUB_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("HUB_REDIS_DB", 0),
		PostgresDSN:   getenv("HUB_POSTGRES_DSN", ""),

		GitHubToken:       getenv("GITHUB_TOKEN", ""),
		GitHubPerPage:     getenvInt("HUB_GITHUB_PER_PAGE", 20),
		GitHubCommitCheck: mustBool("HUB_GITHUB_COMMIT_CHECK", true),

		AdminEmails: splitAndTrim(getenv("HUB_ADMIN_EMAILS", "admin@aitoolhub.dev")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 只检查会让服务无法运行的配置
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("HUB_CACHE_TTL must be > 0, got %v", c.CacheTTL)
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("HUB_POLL_INTERVAL must be >= 1s, got %v", c.PollInterval)
	}
	if c.EnrichWorkers <= 0 {
		return fmt.Errorf("HUB_ENRICH_WORKERS must be > 0, got %d", c.EnrichWorkers)
	}
	if c.GitHubPerPage <= 0 || c.GitHubPerPage > 100 {
		return fmt.Errorf("HUB_GITHUB_PER_PAGE must be in 1..100, got %d", c.GitHubPerPage)
	}
	if c.WebhookRetries < 0 {
		return fmt.Errorf("HUB_WEBHOOK_RETRIES must be >= 0, got %d", c.WebhookRetries)
	}
	return nil
}

// Redacted 用于 debug 日志
func (c Config) Redacted() Config {
	if c.GeminiAPIKey != "" {
		c.GeminiAPIKey = "***REDACTED***"
	}
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.PostgresDSN != "" {
		c.PostgresDSN = "***REDACTED***"
	}
	if c.GitHubToken != "" {
		c.GitHubToken = "***REDACTED***"
	}
	return c
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.Trim(strings.TrimSpace(part), `"'`)
		if trimmed != "" {
			parts = append(parts, strings.ToLower(trimmed))
		}
	}
	return parts
}
