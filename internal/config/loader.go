package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr          string   `json:"addr" yaml:"addr" toml:"addr"`
	WorkerBin     string   `json:"worker_bin" yaml:"worker_bin" toml:"worker_bin"`
	WorkerArgs    []string `json:"worker_args" yaml:"worker_args" toml:"worker_args"`
	SamplesDir    string   `json:"samples_dir" yaml:"samples_dir" toml:"samples_dir"`
	CacheCapacity int      `json:"cache_capacity" yaml:"cache_capacity" toml:"cache_capacity"`
	SettingsDB    string   `json:"settings_db" yaml:"settings_db" toml:"settings_db"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	LogLevel      string   `json:"log_level" yaml:"log_level" toml:"log_level"`
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
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
