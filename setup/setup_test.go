package setup_test

import (
	"context"
	"sort"
	"testing"
	"time"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"barkeep"
	"barkeep/setup"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := setup.LoadConfig()
	must.NoError(t, err)

	should.Equal(t, []string{"openai/gpt-4o-mini", "openai/gpt-4o", "openai/gpt-4-turbo"}, cfg.Models.Models())
	should.Equal(t, int32(1250), cfg.Models.MaxTokens)
	should.Equal(t, float32(0.9), cfg.Models.TopP)
	should.Equal(t, "file", cfg.Store.Backend)
	should.Equal(t, 60*time.Second, cfg.Engine.AttemptTimeout)
	should.Equal(t, "floor", cfg.Engine.YieldPolicy)
	should.Equal(t, "sk-test", cfg.Providers.OpenAIAPIKey)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("MODEL_PRIORITY", "ollama/llama3.1; openai/gpt-4o")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_TTL", "24h")
	t.Setenv("YIELD_POLICY", "round")

	cfg, err := setup.LoadConfig()
	must.NoError(t, err)
	should.Equal(t, []string{"ollama/llama3.1", "openai/gpt-4o"}, cfg.Models.Models())
	should.Equal(t, "redis", cfg.Store.Backend)
	should.Equal(t, 24*time.Hour, cfg.Store.RedisTTL)
	should.Equal(t, "round", cfg.Engine.YieldPolicy)
}

func TestNewRouter(t *testing.T) {
	tests := []struct {
		name string
		cfg  barkeep.ProviderConfig
		want []string
	}{
		{
			name: "openai and ollama",
			cfg:  barkeep.ProviderConfig{DefaultProvider: "openai", OpenAIBaseURL: "https://api.openai.com/v1", OpenAIAPIKey: "k", BaseOllamaEndpoint: "http://localhost:11434"},
			want: []string{"ollama", "openai"},
		},
		{
			name: "no openai key",
			cfg:  barkeep.ProviderConfig{DefaultProvider: "ollama", BaseOllamaEndpoint: "http://localhost:11434"},
			want: []string{"ollama"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := setup.NewRouter(context.Background(), tt.cfg, nil)
			must.NoError(t, err)
			got := r.Providers()
			sort.Strings(got)
			should.Equal(t, tt.want, got)
		})
	}
}

func TestNewStore_Memory(t *testing.T) {
	s, err := setup.NewStore(context.Background(), barkeep.StoreConfig{Backend: "memory"})
	must.NoError(t, err)
	must.NoError(t, s.Put(context.Background(), "s1", "recipe", map[string]string{"name": "x"}))
}
