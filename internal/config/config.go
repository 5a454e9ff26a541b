package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/bms-rag/internal/entity"
	pkgRetry "github.com/futig/bms-rag/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	EmbedProviderOllama = "ollama"
	EmbedProviderGenAI  = "genai"
)

// Config holds the application configuration
type Config struct {
	// Google Gemini API key, used for generation and for genai embeddings
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`

	// Dataset configuration
	DataCfg DataConfig

	// External service configurations
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBED_"`
	LLMCfg       LLMConfig       `envPrefix:"GEMINI_"`

	// Retrieval configuration
	TopK          int    `env:"TOP_K" envDefault:"50"`
	StoreSnapshot string `env:"STORE_SNAPSHOT"`

	// Export configuration
	ExportCfg ExportConfig `envPrefix:"EXPORT_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// HTTP API configuration
	ServerAddr           string        `env:"SERVER_ADDR" envDefault:":8080"`
	ServerRequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"120s"`
	ServerMaxBodyBytes   int64         `env:"SERVER_MAX_BODY_BYTES" envDefault:"65536"`

	// History database configuration (optional, in-memory when empty)
	HistoryDatabaseURL  string        `env:"HISTORY_DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// DataConfig locates the two datasets and the interaction-state keys stripped on ingest
type DataConfig struct {
	ItemPath   string   `env:"ITEM_PATH" envDefault:"item_defination.json"`
	DamagePath string   `env:"DAMAGE_PATH" envDefault:"Damage_scenarios.json"`
	NodeStrip  []string `env:"NODE_STRIP" envDefault:"dragging,resizing,selected" envSeparator:","`
	EdgeStrip  []string `env:"EDGE_STRIP" envDefault:"selected" envSeparator:","`
}

type EmbeddingConfig struct {
	HTTPClientConfig
	Provider     string               `env:"PROVIDER" envDefault:"ollama"`
	Model        string               `env:"MODEL"` // provider default when empty
	BatchSize    int                  `env:"BATCH_SIZE" envDefault:"32"`
	CacheTTL     time.Duration        `env:"CACHE_TTL" envDefault:"30m"`
	CacheCleanup time.Duration        `env:"CACHE_CLEANUP" envDefault:"10m"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConfig struct {
	Model       string               `env:"MODEL" envDefault:"gemini-2.0-flash"`
	Temperature float32              `env:"TEMPERATURE" envDefault:"0.0"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
}

type ExportConfig struct {
	Enabled   bool   `env:"ENABLED" envDefault:"true"`
	OutputDir string `env:"OUTPUT_DIR" envDefault:"output"`
	Format    string `env:"FORMAT" envDefault:"json"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"3"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

// LoadConfig reads .env.<environment> if present and parses the process environment.
func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	return Parse(environment)
}

// Parse builds the configuration from the process environment only.
func Parse(environment string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.TopK < 1 || cfg.TopK > 1000 {
		errors = append(errors, fmt.Sprintf("TOP_K must be between 1 and 1000, got %d", cfg.TopK))
	}

	switch cfg.EmbeddingCfg.Provider {
	case EmbedProviderOllama, EmbedProviderGenAI:
	default:
		errors = append(errors, fmt.Sprintf("EMBED_PROVIDER must be %q or %q, got %q",
			EmbedProviderOllama, EmbedProviderGenAI, cfg.EmbeddingCfg.Provider))
	}

	if cfg.EmbeddingCfg.BatchSize < 1 || cfg.EmbeddingCfg.BatchSize > 512 {
		errors = append(errors, fmt.Sprintf("EMBED_BATCH_SIZE must be between 1 and 512, got %d", cfg.EmbeddingCfg.BatchSize))
	}

	if cfg.LLMCfg.Temperature < 0 || cfg.LLMCfg.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("GEMINI_TEMPERATURE must be between 0 and 2, got %g", cfg.LLMCfg.Temperature))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%w:\n  - %s", entity.ErrInvalidParameter, strings.Join(errors, "\n  - "))
	}

	return nil
}

// RequireAPIKey reports whether the Gemini key is needed for this configuration.
func (c *Config) RequireAPIKey() error {
	if c.EnableMocks {
		return nil
	}
	if c.GoogleAPIKey == "" {
		return entity.ErrMissingAPIKey
	}
	return nil
}

// ValidateTelegram checks the bot settings; only the telegram-bot command needs them.
func (c *TelegramConfig) ValidateTelegram() error {
	var errors []string

	if c.BotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", c.RateLimitPerMinute))
	}

	if c.RateLimitBurst < 1 || c.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", c.RateLimitBurst))
	}

	if c.ShutdownTimeout < 1 || c.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", c.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%w:\n  - %s", entity.ErrInvalidParameter, strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
