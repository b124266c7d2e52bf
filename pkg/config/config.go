package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Milvus   MilvusConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type MilvusConfig struct {
	Endpoint       string
	APIKey         string
	CollectionName string
	VectorDim      int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
}

// PipelineConfig carries the tunables of the answer pipeline. The threshold,
// topK and budgets are deliberately configuration rather than constants.
type PipelineConfig struct {
	RelevanceThreshold   float64
	TopK                 int
	ContextTokenBudget   int
	HistoryWindow        int
	ConversationCapacity int
	RetrievalTimeoutSec  int
	GenerationTimeoutSec int
	// OnLanguageMismatch is "reprompt" or "apologize". It decides what happens
	// when the generated answer comes back in the wrong language.
	OnLanguageMismatch string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/merchant-assistant")

	viper.SetEnvPrefix("ASSISTANT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(cfg *Config) error {
	if cfg.Pipeline.RelevanceThreshold < 0 || cfg.Pipeline.RelevanceThreshold > 1 {
		return fmt.Errorf("pipeline.relevanceThreshold must be in [0,1], got %f", cfg.Pipeline.RelevanceThreshold)
	}
	if cfg.Pipeline.TopK <= 0 {
		return fmt.Errorf("pipeline.topK must be positive, got %d", cfg.Pipeline.TopK)
	}
	switch cfg.Pipeline.OnLanguageMismatch {
	case "reprompt", "apologize":
	default:
		return fmt.Errorf("pipeline.onLanguageMismatch must be \"reprompt\" or \"apologize\", got %q", cfg.Pipeline.OnLanguageMismatch)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 60)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "merchant_knowledge")
	viper.SetDefault("milvus.vectorDim", 1536)

	viper.SetDefault("sqlite.path", "./data/assistant.db")

	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 3600)

	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 1024)

	viper.SetDefault("pipeline.relevanceThreshold", 0.5)
	viper.SetDefault("pipeline.topK", 5)
	viper.SetDefault("pipeline.contextTokenBudget", 1200)
	viper.SetDefault("pipeline.historyWindow", 4)
	viper.SetDefault("pipeline.conversationCapacity", 50)
	viper.SetDefault("pipeline.retrievalTimeoutSec", 5)
	viper.SetDefault("pipeline.generationTimeoutSec", 30)
	viper.SetDefault("pipeline.onLanguageMismatch", "reprompt")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
