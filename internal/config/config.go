package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultSystemPrompt is the stable instructions layer. Overridable via
// CORTEXA_SYSTEM_PROMPT.
const DefaultSystemPrompt = `You are a data analyst assistant.

Your role:
- Answer questions about business metrics and data analysis
- Use the provided context and knowledge to give accurate answers
- If context is insufficient, clearly state what information is missing
- Always explain your reasoning briefly
- Use the metric tools for numeric computations

Be concise, accurate, and helpful.`

type Config struct {
	Debug bool `envconfig:"DEBUG" default:"false"`

	// Core pipeline settings. These are the only knobs that affect core
	// behavior.
	ChunkSize      int `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap   int `envconfig:"CHUNK_OVERLAP" default:"80"`
	RetrievalK     int `envconfig:"RETRIEVAL_K" default:"2"`
	MemoryCapacity int `envconfig:"MEMORY_CAPACITY" default:"4"`
	CharsPerToken  int `envconfig:"CHARS_PER_TOKEN" default:"4"`

	IndexPath    string `envconfig:"INDEX_PATH" default:".cortexa/index.json"`
	SystemPrompt string `envconfig:"SYSTEM_PROMPT"`

	// Optional pgvector-backed index. When unset, the file-backed index at
	// IndexPath is used.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	OpenAIAPIKey   string  `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string  `envconfig:"EMBEDDING_MODEL"`
	ChatModel      string  `envconfig:"CHAT_MODEL" default:"gpt-4.1-mini"`
	Temperature    float32 `envconfig:"TEMPERATURE" default:"0"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CORTEXA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
