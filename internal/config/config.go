package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	minTokenSecretLen = 32
)

type Config struct {
	Port string `env:"PORT" envDefault:"8000"`

	Backend     string `env:"CATALOG_BACKEND" envDefault:"file"`
	CatalogFile string `env:"CATALOG_FILE" envDefault:"catalog.json"`
	DatabaseURL string `env:"DATABASE_URL"`

	UsersFile string `env:"USERS_FILE" envDefault:"users.txt"`

	TokenSecret string        `env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"15m"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsToken   string `env:"METRICS_TOKEN"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.CatalogFile == "" {
			return fmt.Errorf("CATALOG_FILE is required for the %q backend", c.Backend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %q backend", c.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.Backend)
	}

	if c.TokenSecret != "" && len(c.TokenSecret) < minTokenSecretLen {
		return fmt.Errorf("TOKEN_SECRET must be at least %d chars", minTokenSecretLen)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func (c Config) Addr() string { return ":" + c.Port }

func (c Config) TokensEnabled() bool { return c.TokenSecret != "" }
