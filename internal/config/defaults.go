package config

import "time"

// Default values.
const (
	DefaultAddr          = ":8080"
	DefaultModelsDir     = "~/models/llm"
	DefaultDBPath        = "~/.local/share/memoryd/memoryd.db"
	DefaultContextLength = 2048
	DefaultSettleDelay   = 800 * time.Millisecond
	DefaultTemperature   = float32(0.7)
	DefaultMaxTokens     = 512
	DefaultMaxWait       = 30 * time.Second
	DefaultMaxBodyBytes  = 1 << 20
	DefaultEmbedBackend  = "ollama"
	DefaultOllamaURL     = "http://localhost:11434"
	DefaultOllamaModel   = "nomic-embed-text"
	DefaultCacheSize     = 1024
	DefaultCacheTTL      = 10 * time.Minute
	DefaultReindexSpec   = "@every 30m"
	DefaultPersonaSpec   = "@daily"
	DefaultLogLevel      = "info"
)

// Disabled turns off a scheduled job.
const Disabled = "off"

// Default returns a fully populated configuration.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Model.ModelsDir == "" {
		c.Model.ModelsDir = DefaultModelsDir
	}
	if c.Model.ContextLength <= 0 {
		c.Model.ContextLength = DefaultContextLength
	}
	if c.Model.SettleDelay == 0 {
		c.Model.SettleDelay = Duration(DefaultSettleDelay)
	}
	if c.Generation.Temperature == nil {
		t := DefaultTemperature
		c.Generation.Temperature = &t
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = DefaultMaxTokens
	}
	if c.Generation.MaxWait <= 0 {
		c.Generation.MaxWait = Duration(DefaultMaxWait)
	}
	if c.Embedding.Backend == "" {
		c.Embedding.Backend = DefaultEmbedBackend
	}
	if c.Embedding.OllamaURL == "" {
		c.Embedding.OllamaURL = DefaultOllamaURL
	}
	if c.Embedding.OllamaModel == "" {
		c.Embedding.OllamaModel = DefaultOllamaModel
	}
	if c.Embedding.CacheSize == 0 {
		c.Embedding.CacheSize = DefaultCacheSize
	}
	if c.Embedding.CacheTTL == 0 {
		c.Embedding.CacheTTL = Duration(DefaultCacheTTL)
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = DefaultDBPath
	}
	if c.Schedule.Reindex == "" {
		c.Schedule.Reindex = DefaultReindexSpec
	}
	if c.Schedule.Persona == "" {
		c.Schedule.Persona = DefaultPersonaSpec
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Spec returns a cron spec, or "" when the job is disabled.
func Spec(s string) string {
	if s == Disabled {
		return ""
	}
	return s
}
