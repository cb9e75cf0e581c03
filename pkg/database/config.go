package database

import (
	"time"

	"github.com/medibook/medibook_backend/config"
)

// Config holds MongoDB connection settings
type Config struct {
	URI  string
	Name string

	ConnectTimeoutSeconds int
	MaxPoolSize           uint64
	MinPoolSize           uint64
}

func DefaultConfig() Config {
	return Config{
		URI:                   "mongodb://localhost:27017",
		Name:                  "medibook",
		ConnectTimeoutSeconds: 10,
		MaxPoolSize:           100,
	}
}

func (c Config) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// FromCentralConfig converts central config.DatabaseConfig to package Config
func FromCentralConfig(c config.DatabaseConfig) Config {
	def := DefaultConfig()
	cfg := Config{
		URI:                   c.URI,
		Name:                  c.Name,
		ConnectTimeoutSeconds: c.ConnectTimeoutSeconds,
		MaxPoolSize:           c.MaxPoolSize,
		MinPoolSize:           c.MinPoolSize,
	}
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = def.MaxPoolSize
	}
	return cfg
}
