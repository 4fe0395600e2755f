// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing else reads os.Getenv.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port        string // default "8080"
	Env         string // "development" | "staging" | "production"
	GRPCEnabled bool   // default true; gRPC shares Port via cmux

	// ── Storage ───────────────────────────────────────────────────────────────
	// DatabaseURL is optional. When set, the catalog, buyer histories, and the
	// recommendation log live in Postgres and the file paths are ignored.
	DatabaseURL    string
	CatalogPath    string // default "data/productcategory.json"; ".parquet" selects the parquet reader
	CategoriesPath string // default "data/categories.json"; optional file
	HistoryPath    string // default "data/buyershistory.json"
	DefaultUserID  string // buyer used when a request names none

	// RecommendationRetention is how long stored results are kept before the
	// background sweeper removes them. Default 7 days; 0 disables sweeping.
	RecommendationRetention time.Duration

	// ── AI ────────────────────────────────────────────────────────────────────
	MaxOutputTokens  int           // default 200
	AIRequestTimeout time.Duration // default 60s, per provider call

	// Providers are tried in the order DeepSeek, OpenAI, Ark, Anthropic.
	// Any subset may be configured; at least one is required.
	DeepSeekAPIKey  string
	DeepSeekModel   string // default "deepseek-chat"
	OpenAIAPIKey    string
	OpenAIModel     string // default "gpt-4o-mini"
	OpenAIBaseURL   string // empty for api.openai.com; set for llama.cpp etc.
	ArkAPIKey       string
	ArkModel        string
	AnthropicAPIKey string
	AnthropicModel  string // default "claude-haiku-4-5"

	// ── Auth ──────────────────────────────────────────────────────────────────
	JWTSecret string // optional; protects purchase writes
}

// Load reads all environment variables and returns a validated Config.
// It loads a .env file from the working directory when present, so plain
// `go run ./cmd/api` works in development. Real environment variables always
// take precedence over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	c := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		GRPCEnabled:      getEnvAsBool("GRPC_ENABLED", true),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		CatalogPath:      getEnv("CATALOG_PATH", "data/productcategory.json"),
		CategoriesPath:   getEnv("CATEGORIES_PATH", "data/categories.json"),
		HistoryPath:      getEnv("HISTORY_PATH", "data/buyershistory.json"),
		DefaultUserID:    os.Getenv("DEFAULT_USER_ID"),

		RecommendationRetention: getEnvAsDuration("RECOMMENDATION_RETENTION", 7*24*time.Hour),

		MaxOutputTokens:  getEnvAsInt("AI_MAX_OUTPUT_TOKENS", 200),
		AIRequestTimeout: getEnvAsDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
		DeepSeekAPIKey:   os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:    getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		ArkAPIKey:        os.Getenv("ARK_API_KEY"),
		ArkModel:         os.Getenv("ARK_MODEL"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
	}

	return c, c.validate()
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	var errs []error

	if c.DeepSeekAPIKey == "" && c.OpenAIAPIKey == "" && c.ArkAPIKey == "" && c.AnthropicAPIKey == "" {
		errs = append(errs, errors.New("at least one of DEEPSEEK_API_KEY, OPENAI_API_KEY, ARK_API_KEY or ANTHROPIC_API_KEY must be set"))
	}
	if c.ArkAPIKey != "" && c.ArkModel == "" {
		errs = append(errs, errors.New("ARK_MODEL is required when ARK_API_KEY is set"))
	}
	if c.MaxOutputTokens <= 0 {
		errs = append(errs, fmt.Errorf("AI_MAX_OUTPUT_TOKENS must be positive, got %d", c.MaxOutputTokens))
	}
	if c.AIRequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("AI_REQUEST_TIMEOUT must be positive, got %s", c.AIRequestTimeout))
	}
	if c.RecommendationRetention < 0 {
		errs = append(errs, fmt.Errorf("RECOMMENDATION_RETENTION must not be negative, got %s", c.RecommendationRetention))
	}

	return errors.Join(errs...)
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// A plain integer is read as seconds.
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	// Fall back to Go duration syntax: "30s", "5m", "1h", etc.
	if duration, err := time.ParseDuration(strings.TrimSpace(valueStr)); err == nil {
		return duration
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
