package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      string  `yaml:"server"`
	RevealCPS   float64 `yaml:"reveal_cps"`
	Suggestions int     `yaml:"suggestions"`
	Theme       string  `yaml:"theme"`
	LogFile     string  `yaml:"log_file"`
	LogLevel    string  `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Server:      "http://localhost:8000",
		RevealCPS:   66,
		Suggestions: 5,
		Theme:       "system",
		LogLevel:    "info",
	}
}

// LoadConfig reads path (a missing file is fine), applies environment
// overrides, and clamps the result to usable values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if v := os.Getenv("TALINO_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("TALINO_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TALINO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TALINO_THEME"); v != "" {
		cfg.Theme = v
	}

	if cfg.Server == "" {
		cfg.Server = "http://localhost:8000"
	}
	if cfg.RevealCPS <= 0 {
		cfg.RevealCPS = 66
	}
	if cfg.Suggestions <= 0 {
		cfg.Suggestions = 5
	}
	if cfg.Suggestions > 10 {
		cfg.Suggestions = 10
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(os.TempDir(), "talino", "talino.log")
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "talino", "config.yml")
}
