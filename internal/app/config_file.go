package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the optional YAML configuration schema. Nested
// sections map naturally to flags. Durations are written as Go duration
// strings ("10s", "24h").
type FileConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
	UA      string `yaml:"ua"`

	Cache struct {
		Dir    string `yaml:"dir"`
		MaxAge string `yaml:"maxAge"`
	} `yaml:"cache"`

	Card struct {
		Out string `yaml:"out"`
	} `yaml:"card"`

	Verbose bool `yaml:"verbose"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// Apply fills cfg from the file for every field the caller left unset, so
// flag values always win over file values.
func (f *FileConfig) Apply(cfg *Config) error {
	if cfg.URL == "" {
		cfg.URL = f.URL
	}
	if cfg.Timeout == 0 && f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = f.UA
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = f.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && f.Cache.MaxAge != "" {
		d, err := time.ParseDuration(f.Cache.MaxAge)
		if err != nil {
			return fmt.Errorf("config cache.maxAge: %w", err)
		}
		cfg.CacheMaxAge = d
	}
	if cfg.CardPath == "" {
		cfg.CardPath = f.Card.Out
	}
	if f.Verbose {
		cfg.Verbose = true
	}
	return nil
}
