package main

import (
	"fmt"

	"memoryd/internal/config"
)

// loadConfig reads the config file when given, applies defaults and then
// the flag overrides.
func loadConfig(opts *options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		c, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("config: %w", err)
		}
		cfg = c
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.modelsDir != "" {
		cfg.Model.ModelsDir = opts.modelsDir
	}
	if opts.dbPath != "" {
		cfg.Storage.DBPath = opts.dbPath
	}
	if opts.model != "" {
		cfg.Model.DefaultModel = opts.model
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if origins := splitCSV(opts.corsOrigins); len(origins) > 0 {
		cfg.Server.CORS.Enabled = true
		cfg.Server.CORS.AllowedOrigins = origins
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
