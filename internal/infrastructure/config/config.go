package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Surface   SurfaceConfig
	Dynamic   DynamicConfig
	Engine    EngineConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// AIConfig holds AI collaborator configuration.
type AIConfig struct {
	BaseURL    string        `envconfig:"AI_BASE_URL" default:"http://localhost:8100"`
	Timeout    time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	MaxRetries int           `envconfig:"AI_MAX_RETRIES" default:"2"`
	RPS        float64       `envconfig:"AI_RPS" default:"5"`
}

// SurfaceConfig holds sandboxed surface configuration.
type SurfaceConfig struct {
	HeightFloor  float64       `envconfig:"SURFACE_HEIGHT_FLOOR" default:"200"`
	PollInterval time.Duration `envconfig:"SURFACE_POLL_INTERVAL" default:"500ms"`
}

// DynamicConfig holds dynamic source compiler configuration.
type DynamicConfig struct {
	Timeout    time.Duration `envconfig:"DYNAMIC_TIMEOUT" default:"5s"`
	EntryPoint string        `envconfig:"DYNAMIC_ENTRY_POINT" default:"App"`
	Console    bool          `envconfig:"DYNAMIC_CONSOLE" default:"true"`
}

// EngineConfig holds tab engine configuration.
type EngineConfig struct {
	QueueSize int `envconfig:"ENGINE_QUEUE_SIZE" default:"256"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		AI: AIConfig{
			BaseURL:    "http://localhost:8100",
			Timeout:    60 * time.Second,
			MaxRetries: 2,
			RPS:        5,
		},
		Surface: SurfaceConfig{
			HeightFloor:  200,
			PollInterval: 500 * time.Millisecond,
		},
		Dynamic: DynamicConfig{
			Timeout:    5 * time.Second,
			EntryPoint: "App",
			Console:    true,
		},
		Engine: EngineConfig{
			QueueSize: 256,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
