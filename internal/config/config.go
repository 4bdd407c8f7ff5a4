package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendQdrant   = "qdrant"
)

// Model providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderLocal     = "local"
)

// Config holds all configuration for the application
type Config struct {
	Port     string
	Version  string
	LogLevel string

	StoreBackend     string // memory, postgres, mysql or qdrant
	DatabaseURL      string // Ticket store for the postgres and mysql backends
	QdrantHost       string
	QdrantPort       int
	QdrantAPIKey     string
	QdrantUseTLS     bool
	QdrantCollection string

	SummarizerProvider string // openai, anthropic or local
	EmbedderProvider   string // openai or local

	OpenAIKey                      string
	OpenAIBaseURL                  string // Optional override for OpenAI-compatible endpoints
	OpenAIChatModel                string
	OpenAIEmbeddingModel           string
	AzureOpenAIKey                 string
	AzureOpenAIEndpoint            string
	AzureOpenAIGPTDeployment       string
	AzureOpenAIEmbeddingDeployment string
	OpenAIFallback                 bool // Retry a failed Azure call once against the OpenAI platform
	AnthropicKey                   string
	AnthropicModel                 string

	EmbeddingDimensions    int // Every stored and query vector has this length
	ExternalTimeoutSeconds int // Per call to a summarizer or embedder; 0 disables the timeout
	SessionTTLMinutes      int // How long a search waits for feedback
	IngestConcurrency      int // Parallel rows during batch ingestion
	IngestRatePerSecond    int // Max rows per second during batch ingestion; 0 means unlimited

	AnalyticsDatabaseURL string // PostgreSQL for search/feedback counters; empty disables analytics
	SendGridAPIKey       string // SendGrid API key for new ticket notifications
	TriageEmail          string // Recipient of new ticket notifications
	AdminToken           string // Bearer token guarding the analytics endpoint; empty leaves it open
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:     getEnv("PORT", "8080"),
		Version:  getEnv("VERSION", "1.0.0"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvInt("QDRANT_PORT", 6334), // gRPC port
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantUseTLS:     getEnvBool("QDRANT_USE_TLS", false),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "tickets"),

		SummarizerProvider: strings.ToLower(getEnv("SUMMARIZER_PROVIDER", ProviderOpenAI)),
		EmbedderProvider:   strings.ToLower(getEnv("EMBEDDER_PROVIDER", ProviderOpenAI)),

		OpenAIKey:                      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:                  os.Getenv("OPENAI_BASE_URL"),
		OpenAIChatModel:                getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAIEmbeddingModel:           getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		AzureOpenAIKey:                 os.Getenv("AZURE_OPENAI_KEY"),
		AzureOpenAIEndpoint:            os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIGPTDeployment:       getEnv("AZURE_OPENAI_GPT_DEPLOYMENT", "gpt-4o-mini"),
		AzureOpenAIEmbeddingDeployment: getEnv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", "text-embedding-3-small"),
		OpenAIFallback:                 getEnvBool("OPENAI_FALLBACK", false),
		AnthropicKey:                   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:                 getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		EmbeddingDimensions:    getEnvInt("EMBEDDING_DIMENSIONS", 1536),
		ExternalTimeoutSeconds: getEnvInt("EXTERNAL_TIMEOUT_SECONDS", 60),
		SessionTTLMinutes:      getEnvInt("SESSION_TTL_MINUTES", 30),
		IngestConcurrency:      getEnvInt("INGEST_CONCURRENCY", 4),
		IngestRatePerSecond:    getEnvInt("INGEST_RATE_PER_SECOND", 0),

		AnalyticsDatabaseURL: os.Getenv("ANALYTICS_DATABASE_URL"),
		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		TriageEmail:          os.Getenv("TRIAGE_EMAIL"),
		AdminToken:           os.Getenv("ADMIN_API_TOKEN"),
	}

	return config
}

// Validate checks backend and provider names and the credentials they need
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres, BackendMySQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store backend", c.StoreBackend)
		}
	case BackendQdrant:
		if c.QdrantHost == "" || c.QdrantCollection == "" {
			return fmt.Errorf("QDRANT_HOST and QDRANT_COLLECTION are required for the qdrant store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.SummarizerProvider {
	case ProviderOpenAI:
		if !c.HasOpenAI() {
			return fmt.Errorf("openai summarizer needs OPENAI_API_KEY or AZURE_OPENAI_ENDPOINT + AZURE_OPENAI_KEY")
		}
	case ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("anthropic summarizer needs ANTHROPIC_API_KEY")
		}
	case ProviderLocal:
	default:
		return fmt.Errorf("unknown SUMMARIZER_PROVIDER %q", c.SummarizerProvider)
	}

	switch c.EmbedderProvider {
	case ProviderOpenAI:
		if !c.HasOpenAI() {
			return fmt.Errorf("openai embedder needs OPENAI_API_KEY or AZURE_OPENAI_ENDPOINT + AZURE_OPENAI_KEY")
		}
		// Vectors from two different models cannot share one store
		if c.embeddingFallbackEnabled() && c.AzureOpenAIEmbeddingDeployment != c.OpenAIEmbeddingModel {
			return fmt.Errorf("OPENAI_FALLBACK with the openai embedder needs AZURE_OPENAI_EMBEDDING_DEPLOYMENT (%s) to equal OPENAI_EMBEDDING_MODEL (%s)",
				c.AzureOpenAIEmbeddingDeployment, c.OpenAIEmbeddingModel)
		}
	case ProviderLocal:
	default:
		return fmt.Errorf("unknown EMBEDDER_PROVIDER %q", c.EmbedderProvider)
	}

	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.ExternalTimeoutSeconds < 0 {
		return fmt.Errorf("EXTERNAL_TIMEOUT_SECONDS must not be negative")
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

// UseAzureOpenAI reports whether Azure OpenAI is configured as primary provider
func (c *Config) UseAzureOpenAI() bool {
	return c.AzureOpenAIEndpoint != "" && c.AzureOpenAIKey != ""
}

// HasOpenAIFallback reports whether the OpenAI platform key is set
func (c *Config) HasOpenAIFallback() bool {
	return c.OpenAIKey != ""
}

func (c *Config) embeddingFallbackEnabled() bool {
	return c.OpenAIFallback && c.UseAzureOpenAI() && c.HasOpenAIFallback()
}

// HasOpenAI reports whether any OpenAI provider is configured
func (c *Config) HasOpenAI() bool {
	return c.UseAzureOpenAI() || c.HasOpenAIFallback()
}

// ExternalTimeout returns the per-call timeout for model providers
func (c *Config) ExternalTimeout() time.Duration {
	return time.Duration(c.ExternalTimeoutSeconds) * time.Second
}

// SessionTTL returns how long search sessions wait for feedback
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as boolean with a default fallback
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "dupfinder").
		Str("version", c.Version).
		Logger()

	// Set log level based on configuration
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
