package config

import (
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"
)

// LoadAndValidate loads and validates the configuration.
func LoadAndValidate(path, schemaPath string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	schema, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("config: failed to compile schema: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("config: config validation failed: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal into Config struct: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// applyDefaults fills unset optional fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Index.Output == "" {
		cfg.Index.Output = DefaultIndexOutput
	}
	if cfg.Index.Format == "" {
		cfg.Index.Format = IndexFormatMarkdown
	}
	// "default" selects the per-OS cache location
	if cfg.Index.Database == "default" {
		cfg.Index.Database = DefaultDatabasePath()
	}
	if cfg.LinkCheck.Rate <= 0 {
		cfg.LinkCheck.Rate = DefaultLinkCheckRate
	}
	if cfg.LinkCheck.MaxRetries <= 0 {
		cfg.LinkCheck.MaxRetries = DefaultLinkCheckRetries
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
}
