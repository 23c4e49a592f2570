// Package mongo keeps the stub backend's accounts in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// Config holds the connection settings of the account store.
type Config struct {
	URI      string
	Database string
	// Timeout bounds the initial connect and ping.
	Timeout time.Duration
}

// Store is a connected client plus the selected database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects, pings the primary and selects cfg.Database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo: database name is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI).SetAppName("orange-stub"))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping %s: %w", cfg.URI, err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Users returns the account repository backed by this store.
func (s *Store) Users() *UserRepository {
	return NewUserRepository(s.db)
}

// Ping is the readiness check of the store.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
