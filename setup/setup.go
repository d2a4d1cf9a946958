// Package setup builds the runtime graph shared by the CLI and the Lambda handler:
// configuration, the provider router, the session store and the service API.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"barkeep"
	"barkeep/completion"
	"barkeep/completion/bedrock"
	"barkeep/completion/ollama"
	"barkeep/completion/openai"
	"barkeep/service"
	"barkeep/session"
)

// Config is every environment-driven setting.
type Config struct {
	Models    barkeep.ModelConfig
	Providers barkeep.ProviderConfig
	Store     barkeep.StoreConfig
	Engine    barkeep.EngineConfig
}

// LoadConfig decodes Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	for name, target := range map[string]any{
		"model":    &cfg.Models,
		"provider": &cfg.Providers,
		"store":    &cfg.Store,
		"engine":   &cfg.Engine,
	} {
		if err := envdecode.Decode(target); err != nil {
			return Config{}, fmt.Errorf("decode %s config: %w", name, err)
		}
	}
	return cfg, nil
}

// NewRouter registers every provider the configuration enables.
func NewRouter(ctx context.Context, cfg barkeep.ProviderConfig, httpClient barkeep.HTTPClient) (*completion.Router, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	router := completion.NewRouter(cfg.DefaultProvider)

	if cfg.OpenAIAPIKey != "" {
		c, err := openai.NewClient(openai.ClientOpts{
			BaseURL:      cfg.OpenAIBaseURL,
			APIKey:       cfg.OpenAIAPIKey,
			Organization: cfg.OpenAIOrganization,
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, err
		}
		router.Register("openai", c)
	} else {
		slog.Warn("SETUP: OPENAI_API_KEY not set; openai models are unavailable")
	}

	if cfg.BaseOllamaEndpoint != "" {
		c, err := ollama.NewClient(ollama.ClientOpts{BaseEndpoint: cfg.BaseOllamaEndpoint, HTTPClient: httpClient})
		if err != nil {
			return nil, err
		}
		router.Register("ollama", c)
	}

	if cfg.BedrockEnabled {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		router.Register("bedrock", bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg)))
	}

	slog.Info("SETUP: Completion providers registered", "providers", router.Providers(), "default", cfg.DefaultProvider)
	return router, nil
}

// NewStore opens the configured session backend.
func NewStore(ctx context.Context, cfg barkeep.StoreConfig) (*session.Store, error) {
	var s3c *s3.Client
	if cfg.Backend == "s3" {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s3c = s3.NewFromConfig(awsCfg)
	}
	var backend session.Backend
	var err error
	if s3c != nil {
		backend, err = session.Open(cfg, s3c)
	} else {
		backend, err = session.Open(cfg, nil)
	}
	if err != nil {
		return nil, err
	}
	return session.NewStore(backend), nil
}

// NewAPI builds the service API from cfg. journal may be nil.
func NewAPI(ctx context.Context, cfg Config, journal barkeep.AttemptLogger) (*service.API, error) {
	router, err := NewRouter(ctx, cfg.Providers, http.DefaultClient)
	if err != nil {
		return nil, err
	}
	store, err := NewStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return service.Build(service.Deps{
		Client:  router,
		Store:   store,
		Models:  cfg.Models,
		Engine:  cfg.Engine,
		Journal: journal,
	})
}
