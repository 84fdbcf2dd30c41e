package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full environment surface of the server.
type Config struct {
	Port string `env:"PORT" envDefault:"4000"`

	// DatabaseURL selects the shared Postgres deployment when set;
	// otherwise the server runs on a local SQLite file at LocalDBPath.
	DatabaseURL string `env:"DATABASE_URL"`
	LocalDBPath string `env:"LOCAL_DB_PATH" envDefault:"bingo.db"`

	// NATSURL enables cross-instance change relaying when set.
	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"bingo.state"`

	DefaultPoolSize int `env:"DEFAULT_POOL_SIZE" envDefault:"90"`
	DrawIntervalMS  int `env:"DRAW_INTERVAL_MS" envDefault:"1000"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
}

// Load reads .env if present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DefaultPoolSize <= 0 {
		return nil, fmt.Errorf("DEFAULT_POOL_SIZE must be positive, got %d", cfg.DefaultPoolSize)
	}
	if cfg.DrawIntervalMS <= 0 {
		return nil, fmt.Errorf("DRAW_INTERVAL_MS must be positive, got %d", cfg.DrawIntervalMS)
	}
	return &cfg, nil
}
