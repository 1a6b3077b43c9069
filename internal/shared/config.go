package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML or YAML file.
type Config struct {
	App     AppConfig     `toml:"app" yaml:"app"`
	Backend BackendConfig `toml:"backend" yaml:"backend"`
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// AppConfig selects the build mode.
type AppConfig struct {
	Mode string `toml:"mode" yaml:"mode"`
}

// BackendConfig contains the per-mode backend addresses and client settings.
type BackendConfig struct {
	DevelopmentURL string  `toml:"development_url" yaml:"development_url"`
	ProductionURL  string  `toml:"production_url" yaml:"production_url"`
	TimeoutSeconds int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit" yaml:"rate_limit"`
}

// StorageConfig contains the local storage database settings.
type StorageConfig struct {
	Path         string `toml:"path" yaml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level   string `toml:"level" yaml:"level"`
	TUIFile string `toml:"tui_file" yaml:"tui_file"`
}

// LoadConfig reads a configuration file on top of [DefaultConfig].
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML config: %v", ErrInvalidConfig, err)
		}
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
