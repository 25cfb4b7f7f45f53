// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	ClaudeKey    string `yaml:"claude_key"`
	ClaudeModel  string `yaml:"claude_model"`
	OpenAIKey    string `yaml:"openai_key"`
	OpenAIModel  string `yaml:"openai_model"`
	GeminiKey    string `yaml:"gemini_key"`
	GeminiModel  string `yaml:"gemini_model"`
	SystemPrompt string `yaml:"system_prompt"` // overrides the built-in correction prompt
	RatePerSec   int    `yaml:"rate_per_sec"`  // shared token bucket rate for provider calls
}

type QueueConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	MaxIdleChecks int           `yaml:"max_idle_checks"`
	StaleAfter    time.Duration `yaml:"stale_after"`
}

type TypoConfig struct {
	ChunkSize       int     `yaml:"chunk_size"`
	TruncationRatio float64 `yaml:"truncation_ratio"`
}

type ExtractionConfig struct {
	StorageDir string `yaml:"storage_dir"` // where uploaded documents live on disk
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	AI         AIConfig         `yaml:"ai"`
	Queue      QueueConfig      `yaml:"queue"`
	Typo       TypoConfig       `yaml:"typo"`
	Extraction ExtractionConfig `yaml:"extraction"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.AI.ClaudeModel == "" {
		cfg.AI.ClaudeModel = "claude-sonnet-4-20250514"
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.AI.RatePerSec <= 0 {
		cfg.AI.RatePerSec = 50
	}

	if cfg.Queue.PollInterval <= 0 {
		cfg.Queue.PollInterval = 5 * time.Second
	}
	if cfg.Queue.MaxIdleChecks <= 0 {
		cfg.Queue.MaxIdleChecks = 10
	}
	if cfg.Queue.StaleAfter <= 0 {
		cfg.Queue.StaleAfter = time.Hour
	}

	if cfg.Typo.ChunkSize <= 0 {
		cfg.Typo.ChunkSize = 8000
	}
	if cfg.Typo.TruncationRatio <= 0 || cfg.Typo.TruncationRatio >= 1 {
		cfg.Typo.TruncationRatio = 0.5
	}
	if cfg.Extraction.StorageDir == "" {
		cfg.Extraction.StorageDir = "./storage"
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
