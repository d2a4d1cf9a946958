package barkeep

import (
	"strings"
	"time"
)

// ModelConfig holds the model priority lists and sampling defaults.
// Lists are ';'-separated provider/model ids, tried in order.
type ModelConfig struct {
	Priority         string  `env:"MODEL_PRIORITY,default=openai/gpt-4o-mini;openai/gpt-4o;openai/gpt-4-turbo"`
	QualityPriority  string  `env:"MODEL_QUALITY_PRIORITY,default=openai/gpt-4o;openai/gpt-4-turbo"`
	ChatPriority     string  `env:"MODEL_CHAT_PRIORITY,default=openai/gpt-4o-mini;openai/gpt-4o"`
	CostModel        string  `env:"COST_MODEL,default=openai/gpt-4o-mini"`
	MaxTokens        int32   `env:"MAX_TOKENS,default=1250"`
	Temperature      float32 `env:"TEMPERATURE,default=1"`
	TopP             float32 `env:"TOP_P,default=0.9"`
	FrequencyPenalty float32 `env:"FREQUENCY_PENALTY,default=0.5"`
	PresencePenalty  float32 `env:"PRESENCE_PENALTY,default=0.5"`
}

// Models returns the default generation priority list.
func (c ModelConfig) Models() []string { return SplitModels(c.Priority) }

// QualityModels returns the alternate, higher-capability list.
func (c ModelConfig) QualityModels() []string { return SplitModels(c.QualityPriority) }

// ChatModels returns the priority list used by the bartender chat and training guides.
func (c ModelConfig) ChatModels() []string { return SplitModels(c.ChatPriority) }

// ProviderConfig configures the completion providers known to the router.
type ProviderConfig struct {
	DefaultProvider    string `env:"DEFAULT_PROVIDER,default=openai"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL,default=https://api.openai.com/v1"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIOrganization string `env:"OPENAI_ORG"`
	BaseOllamaEndpoint string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	BedrockEnabled     bool   `env:"BEDROCK_ENABLED,default=false"`
}

// StoreConfig selects and configures the session key-value backend.
type StoreConfig struct {
	Backend       string        `env:"SESSION_BACKEND,default=file"`
	FileDir       string        `env:"SESSION_FILE_DIR,default=.barkeep/sessions"`
	RedisAddr     string        `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB,default=0"`
	RedisTTL      time.Duration `env:"REDIS_TTL,default=0s"`
	S3Bucket      string        `env:"SESSION_S3_BUCKET"`
	S3Prefix      string        `env:"SESSION_S3_PREFIX,default=sessions/"`
}

// EngineConfig holds timeouts and costing policy.
type EngineConfig struct {
	AttemptTimeout time.Duration `env:"ATTEMPT_TIMEOUT,default=60s"`
	YieldPolicy    string        `env:"YIELD_POLICY,default=floor"`
	AttemptLogDir  string        `env:"ATTEMPT_LOG_DIR"`
	SlackWebhook   string        `env:"SLACK_WEBHOOK_URL"`
	SlackChannel   string        `env:"SLACK_CHANNEL,default=#bar"`
}

// SplitModels parses a ';'-separated model list, dropping blanks.
func SplitModels(s string) []string {
	var out []string
	for _, m := range strings.Split(s, ";") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
