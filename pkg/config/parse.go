package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DecodeConfigYAML decodes YAML bytes on top of the defaults without validating.
func DecodeConfigYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}
	return cfg, nil
}

// DecodeConfigTOML decodes TOML bytes on top of the defaults without validating.
func DecodeConfigTOML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config toml: %w", err)
	}
	return cfg, nil
}

// ParseConfigYAML parses a Config from YAML bytes on top of the defaults and validates it.
func ParseConfigYAML(data []byte) (*Config, error) {
	cfg, err := DecodeConfigYAML(data)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string and validates it.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

// ParseConfigTOML parses a Config from TOML bytes on top of the defaults and validates it.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg, err := DecodeConfigTOML(data)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
