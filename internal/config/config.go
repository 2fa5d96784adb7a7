// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig
	Cache        CacheConfig
	DocDB        DocDBConfig
	LLM          LLMConfig
	Knowledge    KnowledgeConfig
	Directory    DirectoryConfig
	Dispatch     DispatchConfig
	Escalation   EscalationConfig
	Orchestrator OrchestratorConfig
	Log          LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
	// ServiceKey authenticates webhook calls from sibling services.
	ServiceKey string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Type     string
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type     string
	URI      string
	Database string
}

// ProviderConfig describes one configured LLM backend. Weight orders
// cost-optimized selection (lower is cheaper); Baseline seeds the confidence
// score for responses produced by this backend.
type ProviderConfig struct {
	Name     string
	Model    string
	APIKey   string
	BaseURL  string
	Weight   float64
	Baseline float64
	Tiers    []string
}

// LLMConfig holds language-model routing configuration.
type LLMConfig struct {
	Providers      []ProviderConfig
	InvokeTimeout  time.Duration
	HealthCacheTTL time.Duration
}

// KnowledgeConfig holds the vector-search service configuration.
type KnowledgeConfig struct {
	URL             string
	ServiceKey      string
	Timeout         time.Duration
	MaxContexts     int
	SimilarityFloor float64
}

// DirectoryConfig holds the agent directory service configuration.
type DirectoryConfig struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

// DispatchConfig holds the channel-adapter dispatch configuration.
type DispatchConfig struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
	AutoSend   bool
}

// EscalationConfig holds the human-queue notification configuration.
type EscalationConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// OrchestratorConfig holds decision thresholds for the auto-reply pipeline.
// Injected explicitly so tenants can override and tests can tune.
type OrchestratorConfig struct {
	ConfidenceThreshold float64
	PipelineTimeout     time.Duration
	HistoryLimit        int64
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:       getEnv("SERVER_HOST", "0.0.0.0"),
			Port:       getEnvAsInt("SERVER_PORT", 8080),
			GinMode:    getEnv("GIN_MODE", "debug"),
			ServiceKey: getEnv("SERVICE_KEY", ""),
		},
		Cache: CacheConfig{
			Type:     getEnv("CACHE_TYPE", "redis"),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		DocDB: DocDBConfig{
			Type:     getEnv("DOCDB_TYPE", "mongodb"),
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "omnidesk"),
		},
		LLM: LLMConfig{
			Providers:      loadProviders(),
			// Kept under half the pipeline budget so a hung primary still
			// leaves room for the fallback hop.
			InvokeTimeout:  time.Duration(getEnvAsInt("LLM_INVOKE_TIMEOUT_SECONDS", 7)) * time.Second,
			HealthCacheTTL: time.Duration(getEnvAsInt("LLM_HEALTH_TTL_SECONDS", 120)) * time.Second,
		},
		Knowledge: KnowledgeConfig{
			URL:             getEnv("KNOWLEDGE_SERVICE_URL", "http://localhost:8082"),
			ServiceKey:      getEnv("KNOWLEDGE_SERVICE_KEY", ""),
			Timeout:         time.Duration(getEnvAsInt("KNOWLEDGE_TIMEOUT_SECONDS", 10)) * time.Second,
			MaxContexts:     getEnvAsInt("KNOWLEDGE_MAX_CONTEXTS", 5),
			SimilarityFloor: getEnvAsFloat("KNOWLEDGE_SIMILARITY_FLOOR", 0.7),
		},
		Directory: DirectoryConfig{
			URL:        getEnv("DIRECTORY_SERVICE_URL", "http://localhost:8081"),
			ServiceKey: getEnv("DIRECTORY_SERVICE_KEY", ""),
			Timeout:    time.Duration(getEnvAsInt("DIRECTORY_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Dispatch: DispatchConfig{
			URL:        getEnv("CHANNEL_ADAPTER_URL", "http://localhost:8083"),
			ServiceKey: getEnv("CHANNEL_ADAPTER_KEY", ""),
			Timeout:    time.Duration(getEnvAsInt("CHANNEL_ADAPTER_TIMEOUT_SECONDS", 10)) * time.Second,
			AutoSend:   getEnvAsBool("DISPATCH_AUTO_SEND", true),
		},
		Escalation: EscalationConfig{
			WebhookURL: getEnv("HUMAN_QUEUE_WEBHOOK_URL", ""),
			Timeout:    time.Duration(getEnvAsInt("HUMAN_QUEUE_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Orchestrator: OrchestratorConfig{
			ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.7),
			PipelineTimeout:     time.Duration(getEnvAsInt("PIPELINE_TIMEOUT_SECONDS", 15)) * time.Second,
			HistoryLimit:        int64(getEnvAsInt("HISTORY_LIMIT", 10)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// loadProviders builds the provider list from environment variables. Each
// configured backend appears only if its API key (or server URL, for local
// backends) is present.
func loadProviders() []ProviderConfig {
	var providers []ProviderConfig

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		providers = append(providers, ProviderConfig{
			Name:     "openai",
			Model:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:   key,
			Weight:   getEnvAsFloat("OPENAI_WEIGHT", 2.0),
			Baseline: getEnvAsFloat("OPENAI_BASELINE", 0.8),
			Tiers:    splitList(getEnv("OPENAI_TIERS", "free,pro,enterprise")),
		})
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		providers = append(providers, ProviderConfig{
			Name:     "anthropic",
			Model:    getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),
			APIKey:   key,
			Weight:   getEnvAsFloat("ANTHROPIC_WEIGHT", 3.0),
			Baseline: getEnvAsFloat("ANTHROPIC_BASELINE", 0.85),
			Tiers:    splitList(getEnv("ANTHROPIC_TIERS", "pro,enterprise")),
		})
	}

	if url := os.Getenv("OLLAMA_SERVER_URL"); url != "" {
		providers = append(providers, ProviderConfig{
			Name:     "ollama",
			Model:    getEnv("OLLAMA_MODEL", "llama3"),
			BaseURL:  url,
			Weight:   getEnvAsFloat("OLLAMA_WEIGHT", 1.0),
			Baseline: getEnvAsFloat("OLLAMA_BASELINE", 0.65),
			Tiers:    splitList(getEnv("OLLAMA_TIERS", "free")),
		})
	}

	return providers
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float with a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// splitList splits a comma-separated env value into trimmed entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
