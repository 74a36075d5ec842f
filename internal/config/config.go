// Package config loads the optional .spectag.yml configuration file.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = ".spectag.yml"

type Config struct {
	Logger   Logger   `yaml:"logger"`
	Scan     Scan     `yaml:"scan"`
	Registry Registry `yaml:"registry"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type Scan struct {
	Workers     int `yaml:"workers"`
	MaxFileSize int `yaml:"max_file_size"`
}

type Registry struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Logger:   Logger{Level: "info"},
		Registry: Registry{Path: ".spectag.db"},
	}
}

// Load reads a YAML config file, falling back to defaults when the file does
// not exist. A malformed file is an error; a missing one is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Registry.Path == "" {
		cfg.Registry.Path = ".spectag.db"
	}
	return cfg, nil
}
