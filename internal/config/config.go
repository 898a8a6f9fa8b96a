// Package config loads service configuration from a YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Port      string `mapstructure:"port"`
	DBPath    string `mapstructure:"db_path"`
	UploadDir string `mapstructure:"upload_dir"`

	Chunker   ChunkerConfig   `mapstructure:"chunker"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	GeminiKey string          `mapstructure:"GEMINI_API_KEY"`
}

// ChunkerConfig controls document splitting.
type ChunkerConfig struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

// QdrantConfig points at the vector store. An empty host selects the
// in-memory store, for development runs without external services.
type QdrantConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// EmbeddingConfig holds the per-backend API keys. Backends without a key
// are left out of the fallback chain.
type EmbeddingConfig struct {
	HuggingFaceKey string `mapstructure:"HUGGINGFACE_API_KEY"`
	OpenAIKey      string `mapstructure:"OPENAI_API_KEY"`
	GeminiKey      string `mapstructure:"GEMINI_API_KEY"`
}

// Load reads configuration from configPath (YAML) and the environment.
// A missing file is fine when the path is empty; env vars still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "data/botverse.db")
	v.SetDefault("upload_dir", "data/uploads")
	v.SetDefault("chunker.size", 500)
	v.SetDefault("chunker.overlap", 50)
	v.SetDefault("qdrant.host", "")
	v.SetDefault("qdrant.port", 6334)

	// QDRANT_HOST in the environment maps onto the qdrant.host key.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("HUGGINGFACE_API_KEY")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Mirror the flat env keys into the nested sections viper cannot
	// reach through Unmarshal alone.
	if config.Embedding.HuggingFaceKey == "" {
		config.Embedding.HuggingFaceKey = v.GetString("HUGGINGFACE_API_KEY")
	}
	if config.Embedding.OpenAIKey == "" {
		config.Embedding.OpenAIKey = v.GetString("OPENAI_API_KEY")
	}
	if config.Embedding.GeminiKey == "" {
		config.Embedding.GeminiKey = v.GetString("GEMINI_API_KEY")
	}
	if config.GeminiKey == "" {
		config.GeminiKey = v.GetString("GEMINI_API_KEY")
	}

	return &config, nil
}
