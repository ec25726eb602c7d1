package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datpeek/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// It defines which files are containers, how siblings are navigated, how
// exports are named and how the hosts log and lay themselves out.
type Config struct {
	Container struct {
		Extension string `yaml:"extension" json:"extension"` // Container file extension, with the dot
	} `yaml:"container" json:"container"`
	Navigation struct {
		SortSiblings bool `yaml:"sort_siblings" json:"sort_siblings"` // Sort siblings by name instead of directory order
	} `yaml:"navigation" json:"navigation"`
	Export struct {
		Extension  string `yaml:"extension" json:"extension"`     // Extension of generated export names
		TimeFormat string `yaml:"time_format" json:"time_format"` // Layout of the creation time metric
	} `yaml:"export" json:"export"`
	Logging struct {
		Debug bool   `yaml:"debug" json:"debug"` // Emit debug entries
		JSON  bool   `yaml:"json" json:"json"`   // One JSON object per entry
		File  string `yaml:"file" json:"file"`   // Also append entries to this file
	} `yaml:"logging" json:"logging"`
	GUI struct {
		Width  int `yaml:"width" json:"width"`   // Initial window width
		Height int `yaml:"height" json:"height"` // Initial window height
	} `yaml:"gui" json:"gui"`
	TUI struct {
		Theme string `yaml:"theme" json:"theme"` // Terminal color theme
	} `yaml:"tui" json:"tui"`
}

// DefaultPath returns the default config location
// (~/.config/datpeek/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "datpeek", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if tempCfg.Container.Extension != "" {
		cfg.Container.Extension = tempCfg.Container.Extension
	}
	cfg.Navigation.SortSiblings = tempCfg.Navigation.SortSiblings

	if tempCfg.Export.Extension != "" {
		cfg.Export.Extension = tempCfg.Export.Extension
	}
	if tempCfg.Export.TimeFormat != "" {
		cfg.Export.TimeFormat = tempCfg.Export.TimeFormat
	}

	cfg.Logging.Debug = tempCfg.Logging.Debug
	cfg.Logging.JSON = tempCfg.Logging.JSON
	cfg.Logging.File = tempCfg.Logging.File

	if tempCfg.GUI.Width != 0 {
		cfg.GUI.Width = tempCfg.GUI.Width
	}
	if tempCfg.GUI.Height != 0 {
		cfg.GUI.Height = tempCfg.GUI.Height
	}
	if tempCfg.TUI.Theme != "" {
		cfg.TUI.Theme = tempCfg.TUI.Theme
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Container.Extension = ".dat"
	cfg.Navigation.SortSiblings = false // Directory read order

	cfg.Export.Extension = ".png"
	cfg.Export.TimeFormat = "2006-01-02 15:04:05"

	cfg.GUI.Width = 900
	cfg.GUI.Height = 700

	cfg.TUI.Theme = "default"

	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns a ConfigError naming the offending setting if any are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if err := validateExtension("container.extension", c.Container.Extension); err != nil {
		return err
	}
	if err := validateExtension("export.extension", c.Export.Extension); err != nil {
		return err
	}

	if strings.TrimSpace(c.Export.TimeFormat) == "" {
		return errors.NewConfigError("time format is required", "export.time_format", errors.InvalidConfig, nil)
	}
	// The formatted time becomes a file name
	if strings.ContainsAny(c.Export.TimeFormat, `/\`) {
		return errors.NewConfigError(
			fmt.Sprintf("time format must not contain path separators: %s", c.Export.TimeFormat),
			"export.time_format", errors.InvalidConfig, nil)
	}

	if c.GUI.Width <= 0 || c.GUI.Height <= 0 {
		return errors.NewConfigError(
			fmt.Sprintf("window size must be positive, got %dx%d", c.GUI.Width, c.GUI.Height),
			"gui", errors.InvalidConfig, nil)
	}

	if _, ok := themes[c.TUI.Theme]; !ok {
		return errors.NewConfigError(fmt.Sprintf("unknown theme %q", c.TUI.Theme), "tui.theme", errors.InvalidConfig, nil)
	}

	return nil
}

func validateExtension(param, ext string) error {
	if ext == "" {
		return errors.NewConfigError("extension is required", param, errors.InvalidConfig, nil)
	}
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		return errors.NewConfigError(fmt.Sprintf("extension must start with a dot: %q", ext), param, errors.InvalidConfig, nil)
	}
	if strings.ContainsAny(ext, `/\*?[`) {
		return errors.NewConfigError(fmt.Sprintf("extension contains invalid characters: %q", ext), param, errors.InvalidConfig, nil)
	}
	return nil
}

// NewTestConfig creates a configuration instance for testing purposes.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Export.Extension = ".jpg"
	cfg.GUI.Width = 320
	cfg.GUI.Height = 240
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

var themes = map[string]map[string]string{
	"default": {
		"primary":  "213", // Purple
		"success":  "114", // Green
		"warning":  "220", // Yellow
		"error":    "196", // Red
		"info":     "39",  // Blue
		"emphasis": "212", // Light Pink
		"border":   "213", // Purple
	},
	"dark": {
		"primary":  "105",
		"success":  "78",
		"warning":  "214",
		"error":    "160",
		"info":     "33",
		"emphasis": "147",
		"border":   "105",
	},
	"light": {
		"primary":  "135",
		"success":  "150",
		"warning":  "222",
		"error":    "210",
		"info":     "117",
		"emphasis": "219",
		"border":   "135",
	},
	"monochrome": {
		"primary":  "245",
		"success":  "252",
		"warning":  "241",
		"error":    "232",
		"info":     "248",
		"emphasis": "255",
		"border":   "245",
	},
}

// GetTheme returns a predefined theme by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	if theme, exists := themes[name]; exists {
		return theme
	}
	return themes["default"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
