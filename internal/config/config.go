package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config is the process configuration, read from the environment
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"auth_gateway"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	EncryptionKey string `env:"ENCRYPTION_KEY,required,notEmpty"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StageTimeout time.Duration `env:"STAGE_TIMEOUT" envDefault:"5s"`
	SyncTimeout  time.Duration `env:"SYNC_TIMEOUT" envDefault:"30s"`

	SyncQueue       string `env:"SYNC_QUEUE" envDefault:"sync:initiate"`
	AnalyticsStream string `env:"ANALYTICS_STREAM" envDefault:"analytics:events"`
	FlagPrefix      string `env:"FLAG_PREFIX" envDefault:"feature"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses the environment into a Config
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Level returns the zerolog level, falling back to info for unknown values
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}
