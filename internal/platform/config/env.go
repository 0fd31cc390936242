package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server is the process configuration for cmd/server.
type Server struct {
	HTTPAddr      string        `env:"MANASIM_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr      string        `env:"MANASIM_GRPC_ADDR" envDefault:":9090"`
	ConfigDir     string        `env:"MANASIM_CONFIG_DIR" envDefault:"configs"`
	DBPath        string        `env:"MANASIM_DB_PATH" envDefault:"data/runs.db"`
	LogLevel      string        `env:"MANASIM_LOG_LEVEL" envDefault:"info"`
	Workers       int           `env:"MANASIM_WORKERS" envDefault:"0"`
	MaxWorkers    int           `env:"MANASIM_MAX_WORKERS" envDefault:"0"`
	MaxTrials     int           `env:"MANASIM_MAX_TRIALS" envDefault:"1000000"`
	WatchInterval time.Duration `env:"MANASIM_WATCH_INTERVAL" envDefault:"2s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
