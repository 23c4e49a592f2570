// Package config loads the settings of the stub backend.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// UserStore selects the account repository.
const (
	UserStoreMemory = "memory"
	UserStoreMongo  = "mongo"
)

type Config struct {
	Port      string        `env:"PORT,       default=3456"`
	JWTSecret string        `env:"JWT_SECRET, default=orange-secret-key-change-in-production"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=debug"`
	LogPretty bool          `env:"LOG_PRETTY, default=false"`
	UserStore string        `env:"USER_STORE, default=memory"`
	// SeedAdminPassword creates an admin account on an empty store when set.
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`

	Mongo MongoConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=orange"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
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
	switch cfg.UserStore {
	case UserStoreMemory, UserStoreMongo:
	default:
		return nil, fmt.Errorf("config: unknown USER_STORE %q", cfg.UserStore)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return &cfg, nil
}
