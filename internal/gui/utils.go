//go:build !nogui
// +build !nogui

package gui

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"datpeek/internal/config"

	"gopkg.in/yaml.v3"
)

// parseImportedConfig parses a configuration file named name. Settings the
// file leaves out keep their defaults.
func parseImportedConfig(reader io.Reader, name string) (*config.Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	cfg := config.New()
	switch format := strings.ToLower(filepath.Ext(name)); format {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// exportConfig writes cfg as yaml or json.
func exportConfig(cfg *config.Config, writer io.Writer, format string) error {
	var data []byte
	var err error

	switch strings.ToLower(format) {
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding to JSON: %w", err)
		}
	case "yaml":
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error encoding to YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}
	return nil
}
