// Package config provides application configuration with multi-source
// priority: environment variables (SHASHTHO_*) override the config file
// (~/.shashtho/config.yaml), which overrides defaults.
//
// Model API credentials (GEMINI_API_KEY, OPENAI_API_KEY) are read by the
// provider SDKs directly from the environment and are never stored here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors returned by Validate. Check with errors.Is.
var (
	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrMissingAPIKey indicates the selected provider's API key is unset.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidChunking indicates chunk size/overlap are inconsistent.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidTopK indicates the retrieval depth is out of range.
	ErrInvalidTopK = errors.New("invalid top-k")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Defaults. Storage names match the vector indexes produced by earlier
// deployments, so existing on-disk indexes stay addressable.
const (
	DefaultAddr          = "127.0.0.1:8080"
	DefaultModelName     = "gemini-2.5-flash"
	DefaultEmbedderModel = "gemini-embedding-001"
	DefaultOpenAIModel   = "llama-3.1-8b-instant"
	DefaultOllamaHost    = "http://localhost:11434"
	DefaultPersistDir    = "db_menstrual_health"
	DefaultCollection    = "menstrual_health_chunks"
	DefaultDataDir       = "data/raw"
	DefaultChunkSize     = 1024
	DefaultChunkOverlap  = 100
	DefaultTopK          = 4
	DefaultRateLimit     = 10.0
	DefaultRateBurst     = 30
)

// TracingConfig configures optional OTLP trace export. Empty endpoint
// disables tracing.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
}

// Config stores application configuration.
type Config struct {
	// AI provider and models
	Provider      string `mapstructure:"provider"`       // "gemini" (default), "openai", "ollama"
	ModelName     string `mapstructure:"model_name"`     // generation model, unqualified
	EmbedderModel string `mapstructure:"embedder_model"` // embedding model, unqualified
	OllamaHost    string `mapstructure:"ollama_host"`

	// HTTP server
	Addr    string `mapstructure:"addr"`
	Preload bool   `mapstructure:"preload"` // eager per-language warm-up before serving

	// Retrieval and storage
	TopK       int    `mapstructure:"top_k"`
	PersistDir string `mapstructure:"persist_dir"`
	Collection string `mapstructure:"collection"`

	// Ingestion
	DataDir      string `mapstructure:"data_dir"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`

	// Generation rate limiting
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second
	RateBurst int     `mapstructure:"rate_burst"`

	// Logging
	LogLevel string `mapstructure:"log_level"` // debug|info|warn|error
	LogJSON  bool   `mapstructure:"log_json"`

	Tracing TracingConfig `mapstructure:"tracing"`
}

// Load reads configuration from defaults, the optional config file, and
// the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("ollama_host", DefaultOllamaHost)
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("preload", true)
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("persist_dir", DefaultPersistDir)
	v.SetDefault("collection", DefaultCollection)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("rate_limit", DefaultRateLimit)
	v.SetDefault("rate_burst", DefaultRateBurst)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetEnvPrefix("SHASHTHO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".shashtho"))
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults and env carry the load.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for serving. Missing credentials for
// the selected provider are the only process-fatal misconfiguration.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY or GOOGLE_API_KEY for provider %q", ErrMissingAPIKey, c.Provider)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY for provider %q", ErrMissingAPIKey, c.Provider)
		}
	case ProviderOllama:
		// Local provider, no credentials.
	default:
		return fmt.Errorf("%w: %q (want %s, %s, or %s)", ErrInvalidProvider, c.Provider, ProviderGemini, ProviderOpenAI, ProviderOllama)
	}

	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunking, c.ChunkSize, c.ChunkOverlap)
	}
	if c.TopK <= 0 || c.TopK > 20 {
		return fmt.Errorf("%w: %d (want 1-20)", ErrInvalidTopK, c.TopK)
	}
	return nil
}

// QualifiedModelName returns the provider-qualified generation model
// identifier Genkit expects, e.g. "googleai/gemini-2.5-flash".
func (c *Config) QualifiedModelName() string {
	switch c.Provider {
	case ProviderOpenAI:
		return "openai/" + c.ModelName
	case ProviderOllama:
		return "ollama/" + c.ModelName
	default:
		return "googleai/" + c.ModelName
	}
}
