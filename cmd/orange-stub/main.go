// Command orange-stub serves the Orange auth endpoints for local development
// and integration tests.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/api"
	"github.com/FruitsAI/orange-client/internal/api/handler"
	"github.com/FruitsAI/orange-client/internal/core/ports"
	"github.com/FruitsAI/orange-client/internal/core/service"
	"github.com/FruitsAI/orange-client/internal/infrastructure/config"
	"github.com/FruitsAI/orange-client/internal/infrastructure/db/memory"
	"github.com/FruitsAI/orange-client/internal/infrastructure/db/mongo"
	"github.com/FruitsAI/orange-client/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("load configuration")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "orange-stub"})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := map[string]handler.Check{}

	var repo ports.UserRepository
	switch cfg.UserStore {
	case config.UserStoreMongo:
		store, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Close(closeCtx)
		}()
		users := store.Users()
		if err := users.EnsureIndexes(ctx); err != nil {
			return err
		}
		repo = users
		checks["mongo"] = store.Ping
	default:
		repo = memory.NewUserRepository()
	}

	authService := service.NewAuthService(repo, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	if err := authService.SeedAdmin(ctx, cfg.SeedAdminPassword); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := api.NewRouter(api.RouterConfig{
		AuthService: authService,
		JWTSecret:   cfg.JWTSecret,
		Logger:      logger.Component("http"),
		Checks:      checks,
		Metrics:     registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("user_store", cfg.UserStore).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
