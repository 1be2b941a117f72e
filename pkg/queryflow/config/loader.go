package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads settings from a file, auto-detecting format by
// extension, then applies environment overrides and validates.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config file: %w", err)
	}

	var s Settings
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		s, err = FromYAML(data)
	case ".json":
		s, err = FromJSON(data)
	default:
		return Settings{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}

	s.ApplyEnv()
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

// FromYAML parses YAML data over Defaults. Keys the data does not set
// keep their default values. The result is validated but environment
// overrides are not applied.
func FromYAML(data []byte) (Settings, error) {
	s := Defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// FromJSON parses JSON data over Defaults. Keys the data does not set
// keep their default values. The result is validated but environment
// overrides are not applied.
func FromJSON(data []byte) (Settings, error) {
	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse json: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
