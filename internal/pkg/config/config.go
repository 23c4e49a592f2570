// Package config loads the client settings: backend address, credential
// store backend and logging.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Credential store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	APIURL      string        `env:"ORANGE_API_URL,      default=http://localhost:3456/api/v1"`
	Timeout     time.Duration `env:"ORANGE_TIMEOUT,      default=10s"`
	ExpiredCode int           `env:"ORANGE_EXPIRED_CODE, default=2002"`
	AppName     string        `env:"ORANGE_APP_NAME,     default=Orange"`
	LogLevel    string        `env:"LOG_LEVEL,           default=warn"`
	LogPretty   bool          `env:"LOG_PRETTY,          default=true"`

	Store StoreConfig
}

type StoreConfig struct {
	Backend string `env:"ORANGE_STORE, default=file"`
	// Path is the file backend location; empty means the user config dir.
	Path  string      `env:"ORANGE_STORE_PATH"`
	Redis RedisConfig `env:", prefix=ORANGE_"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,   default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,     default=0"`
	Prefix   string `env:"REDIS_PREFIX, default=orange:"`
}

// Load reads an optional .env file, then the environment.
func Load(ctx context.Context, dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Store.Backend {
	case StoreFile, StoreMemory, StoreRedis:
	default:
		return nil, fmt.Errorf("config: unknown ORANGE_STORE %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == StoreFile && cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	return &cfg, nil
}

// DefaultStorePath is session.json under the per-user config directory,
// falling back to the working directory.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "orange-session.json"
	}
	return filepath.Join(dir, "FruitsAI", "Orange", "session.json")
}
