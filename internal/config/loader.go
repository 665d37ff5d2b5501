// Package config loads the memoryd configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server" toml:"server"`
	Model      ModelConfig      `json:"model" yaml:"model" toml:"model"`
	Generation GenerationConfig `json:"generation" yaml:"generation" toml:"generation"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding" toml:"embedding"`
	Storage    StorageConfig    `json:"storage" yaml:"storage" toml:"storage"`
	Prompt     PromptConfig     `json:"prompt" yaml:"prompt" toml:"prompt"`
	Schedule   ScheduleConfig   `json:"schedule" yaml:"schedule" toml:"schedule"`
	LogLevel   string           `json:"log_level" yaml:"log_level" toml:"log_level"`
}

type ServerConfig struct {
	Addr         string     `json:"addr" yaml:"addr" toml:"addr"`
	CORS         CORSConfig `json:"cors" yaml:"cors" toml:"cors"`
	MaxBodyBytes int64      `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// GenerateTimeout bounds one /generate request; 0 disables it.
	GenerateTimeout Duration `json:"generate_timeout" yaml:"generate_timeout" toml:"generate_timeout"`
}

type CORSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

type ModelConfig struct {
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	// DefaultModel is loaded at startup when set.
	DefaultModel  string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	ContextLength int      `json:"context_length" yaml:"context_length" toml:"context_length"`
	SettleDelay   Duration `json:"settle_delay" yaml:"settle_delay" toml:"settle_delay"`
	Threads       int      `json:"threads" yaml:"threads" toml:"threads"`
}

type GenerationConfig struct {
	// Temperature nil means the default; 0 is greedy.
	Temperature   *float32 `json:"temperature" yaml:"temperature" toml:"temperature"`
	MaxTokens     int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	MaxWait       Duration `json:"max_wait" yaml:"max_wait" toml:"max_wait"`
	StopSequences []string `json:"stop_sequences" yaml:"stop_sequences" toml:"stop_sequences"`
}

type EmbeddingConfig struct {
	// Backend is ollama, llama or hash.
	Backend     string   `json:"backend" yaml:"backend" toml:"backend"`
	OllamaURL   string   `json:"ollama_url" yaml:"ollama_url" toml:"ollama_url"`
	OllamaModel string   `json:"ollama_model" yaml:"ollama_model" toml:"ollama_model"`
	LlamaModel  string   `json:"llama_model" yaml:"llama_model" toml:"llama_model"`
	HashDim     int      `json:"hash_dim" yaml:"hash_dim" toml:"hash_dim"`
	CacheSize   int      `json:"cache_size" yaml:"cache_size" toml:"cache_size"`
	CacheTTL    Duration `json:"cache_ttl" yaml:"cache_ttl" toml:"cache_ttl"`
}

type StorageConfig struct {
	DBPath string `json:"db_path" yaml:"db_path" toml:"db_path"`
}

type PromptConfig struct {
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`
}

// ScheduleConfig holds cron specs; "off" disables a job.
type ScheduleConfig struct {
	Reindex string `json:"reindex" yaml:"reindex" toml:"reindex"`
	Persona string `json:"persona" yaml:"persona" toml:"persona"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("toml: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
