package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validBase returns a config that passes Validate for the ollama provider,
// which needs no credentials.
func validBase() *Config {
	return &Config{
		Provider:     ProviderOllama,
		ModelName:    "qwen3",
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		TopK:         DefaultTopK,
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Keep the home-dir config file out of the picture.
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, DefaultModelName, cfg.ModelName)
	assert.Equal(t, DefaultEmbedderModel, cfg.EmbedderModel)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.True(t, cfg.Preload)
	assert.Equal(t, DefaultTopK, cfg.TopK)
	assert.Equal(t, DefaultPersistDir, cfg.PersistDir)
	assert.Equal(t, DefaultCollection, cfg.Collection)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.ChunkOverlap)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, DefaultRateBurst, cfg.RateBurst)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.Empty(t, cfg.Tracing.Endpoint)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHASHTHO_PROVIDER", ProviderOllama)
	t.Setenv("SHASHTHO_MODEL_NAME", "qwen3")
	t.Setenv("SHASHTHO_TOP_K", "7")
	t.Setenv("SHASHTHO_PRELOAD", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "qwen3", cfg.ModelName)
	assert.Equal(t, 7, cfg.TopK)
	assert.False(t, cfg.Preload)
}

func TestValidate_Providers(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		cfg := validBase()
		cfg.Provider = "anthropic"
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidProvider)
	})

	t.Run("ollama needs no credentials", func(t *testing.T) {
		assert.NoError(t, validBase().Validate())
	})

	t.Run("gemini without key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")
		cfg := validBase()
		cfg.Provider = ProviderGemini
		assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
	})

	t.Run("gemini with either key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "test-key")
		cfg := validBase()
		cfg.Provider = ProviderGemini
		assert.NoError(t, cfg.Validate())
	})

	t.Run("openai without key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := validBase()
		cfg.Provider = ProviderOpenAI
		assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
	})

	t.Run("openai with key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "test-key")
		cfg := validBase()
		cfg.Provider = ProviderOpenAI
		assert.NoError(t, cfg.Validate())
	})
}

func TestValidate_Chunking(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"defaults", DefaultChunkSize, DefaultChunkOverlap, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 1024, -1, true},
		{"overlap equals size", 512, 512, true},
		{"overlap exceeds size", 512, 600, true},
		{"zero overlap ok", 512, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validBase()
			cfg.ChunkSize = tt.size
			cfg.ChunkOverlap = tt.overlap

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChunking)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_TopK(t *testing.T) {
	t.Parallel()

	for _, k := range []int{0, -1, 21, 100} {
		cfg := validBase()
		cfg.TopK = k
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidTopK, "top_k %d", k)
	}
	for _, k := range []int{1, 4, 20} {
		cfg := validBase()
		cfg.TopK = k
		assert.NoError(t, cfg.Validate(), "top_k %d", k)
	}
}

func TestQualifiedModelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{ProviderGemini, "gemini-2.5-flash", "googleai/gemini-2.5-flash"},
		{ProviderOpenAI, "llama-3.1-8b-instant", "openai/llama-3.1-8b-instant"},
		{ProviderOllama, "qwen3", "ollama/qwen3"},
	}

	for _, tt := range tests {
		cfg := &Config{Provider: tt.provider, ModelName: tt.model}
		assert.Equal(t, tt.want, cfg.QualifiedModelName())
	}
}
