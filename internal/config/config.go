package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Store    string       `yaml:"store"` // "supabase" or "local"
	Database DBConfig     `yaml:"database"`
	Local    LocalConfig  `yaml:"local"`
	EmbedLLM LLMConfig    `yaml:"embed_llm"`
	InferLLM LLMConfig    `yaml:"infer_llm"`
	RAG      RAGConfig    `yaml:"rag"`
	Server   ServerConfig `yaml:"server"`
}

type DBConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type LocalConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai" (default) or "ollama"
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type RAGConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	MatchThreshold float64 `yaml:"match_threshold"`
	MatchCount     int     `yaml:"match_count"`
	BatchSize      int     `yaml:"batch_size"`
	EncryptionKey  string  `yaml:"encryption_key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

const (
	defaultChunkSize      = 4000
	defaultChunkOverlap   = 200
	defaultMatchThreshold = 0.7
	defaultMatchCount     = 8
	defaultBatchSize      = 10
	defaultTemperature    = 0.1
	defaultMaxTokens      = 1000
	defaultAddr           = ":8080"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Store == "" {
		c.Store = "supabase"
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if c.RAG.MatchThreshold <= 0 {
		c.RAG.MatchThreshold = defaultMatchThreshold
	}
	if c.RAG.MatchCount <= 0 {
		c.RAG.MatchCount = defaultMatchCount
	}
	if c.RAG.BatchSize <= 0 {
		c.RAG.BatchSize = defaultBatchSize
	}
	if c.InferLLM.Temperature <= 0 {
		c.InferLLM.Temperature = defaultTemperature
	}
	if c.InferLLM.MaxTokens <= 0 {
		c.InferLLM.MaxTokens = defaultMaxTokens
	}
	if c.Local.Collection == "" {
		c.Local.Collection = "cv_chunks"
	}
	if c.Local.Path == "" {
		c.Local.Path = "./chromemdb"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
}
