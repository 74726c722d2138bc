package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"3333"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"file"`
	StorageDir    string `env:"STORAGE_DIR" envDefault:"./data"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"./data/places.db"`
	// FlushInterval is how often a failed write-through is retried.
	FlushInterval time.Duration `env:"FLUSH_INTERVAL" envDefault:"30s"`

	AdminPasscode     string        `env:"ADMIN_PASSCODE" envDefault:"2334"`
	AdminPasscodeHash string        `env:"ADMIN_PASSCODE_HASH"`
	SessionSecret     string        `env:"SESSION_SECRET"`
	AdminSessionTTL   time.Duration `env:"ADMIN_SESSION_TTL" envDefault:"12h"`

	MetricsUser string `env:"METRICS_USER"`
	MetricsPass string `env:"METRICS_PASS"`
	PprofSecret string `env:"PPROF_SECRET"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"30"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.AdminPasscode == "" && c.AdminPasscodeHash == "" {
		return errors.New("ADMIN_PASSCODE or ADMIN_PASSCODE_HASH must be set")
	}
	if c.AdminSessionTTL <= 0 {
		return errors.New("ADMIN_SESSION_TTL must be positive")
	}
	if c.FlushInterval <= 0 {
		return errors.New("FLUSH_INTERVAL must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
