package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      Server      `yaml:"server"`
	Builder     Builder     `yaml:"builder"`
	Registry    Registry    `yaml:"registry"`
	Storage     Storage     `yaml:"storage"`
	Suggestions Suggestions `yaml:"suggestions"`
	RateLimit   RateLimit   `yaml:"rate_limit"`
	Log         Log         `yaml:"log"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Builder struct {
	Interval        time.Duration `yaml:"interval"`         // between build runs
	FreshnessWindow time.Duration `yaml:"freshness_window"` // entries younger than this are not re-scraped
	RequestTimeout  time.Duration `yaml:"request_timeout"`  // hard cap per scrape request
	HistoryLimit    int           `yaml:"history_limit"`    // recent versions fetched for oversized packages
	RPS             float64       `yaml:"rps"`              // scrape throttle against the size service
	Burst           int           `yaml:"burst"`
}

type Registry struct {
	SizeAPI string `yaml:"size_api"`
}

type Storage struct {
	Path string `yaml:"path"`
}

type Suggestions struct {
	Path    string `yaml:"path"`
	RepoURL string `yaml:"repo_url"` // optional git source for the curated map
}

type RateLimit struct {
	RPS   int `yaml:"rps"`
	Burst int `yaml:"burst"`
}

type Log struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Filename   string `yaml:"filename"`    // log file path
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // number of backups
	MaxAge     int    `yaml:"max_age"`     // days
	Compress   bool   `yaml:"compress"`    // compress rotated files
}

// Load loads the configuration from the default config file
func Load() (*Config, error) {
	return LoadFromFile("config/config.yaml")
}

// LoadFromFile loads the configuration from the specified file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Builder.Interval == 0 {
		c.Builder.Interval = 12 * time.Hour
	}
	if c.Builder.FreshnessWindow == 0 {
		c.Builder.FreshnessWindow = 7 * 24 * time.Hour
	}
	if c.Builder.RequestTimeout == 0 {
		c.Builder.RequestTimeout = 30 * time.Second
	}
	if c.Builder.HistoryLimit == 0 {
		c.Builder.HistoryLimit = 10
	}
	if c.Builder.RPS == 0 {
		c.Builder.RPS = 2
	}
	if c.Builder.Burst == 0 {
		c.Builder.Burst = 1
	}
	if c.Registry.SizeAPI == "" {
		c.Registry.SizeAPI = "https://bundlephobia.com"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data"
	}
	if c.Suggestions.Path == "" {
		c.Suggestions.Path = filepath.Join("config", "suggestions.yaml")
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Filename == "" {
		c.Log.Filename = filepath.Join("logs", "bundlescout.log")
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 50
	}
}
