// Package app wires the session layer into one Client: credential store,
// gateway, session, navigation and the UI signal channels.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
	"github.com/FruitsAI/orange-client/internal/core/service"
	"github.com/FruitsAI/orange-client/internal/infrastructure/credstore"
	"github.com/FruitsAI/orange-client/internal/infrastructure/db/file"
	"github.com/FruitsAI/orange-client/internal/infrastructure/db/memory"
	redisdb "github.com/FruitsAI/orange-client/internal/infrastructure/db/redis"
	"github.com/FruitsAI/orange-client/internal/infrastructure/gateway"
	"github.com/FruitsAI/orange-client/internal/infrastructure/queue"
	"github.com/FruitsAI/orange-client/internal/pkg/config"
)

// LoginRoute is where an expired session lands.
const LoginRoute = "/login"

const (
	topicSession = "session"
	topicToasts  = "toasts"
)

// ErrNoSurface is returned by Confirm when no confirmation surface was given.
var ErrNoSurface = errors.New("no confirmation surface available")

// Options configures New. Only Config is required.
type Options struct {
	Config *config.Config
	// Store overrides the backend selected by Config.Store.
	Store      ports.KeyValueStore
	HTTPClient *http.Client
	// Routes defaults to domain.DefaultRoutes.
	Routes   []domain.Route
	Titles   ports.TitleSink
	Surfaces ports.SurfaceFactory
	Logger   zerolog.Logger
}

// Client is the process context object. Components are exported so views and
// other API modules can reach them; the wiring between them is fixed by New.
type Client struct {
	Gateway   *gateway.Gateway
	Auth      *gateway.AuthClient
	Session   *service.SessionService
	Guard     *service.NavigationGuard
	Navigator *service.Navigator
	Toasts    *service.ToastQueue
	Confirm   *service.ConfirmBroker

	dispatcher *queue.Dispatcher
	cancel     context.CancelFunc
	closers    []func() error
}

// New builds the Client and hydrates the session from the credential store.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.Config == nil {
		return nil, errors.New("app: config is required")
	}
	cfg := opts.Config
	log := opts.Logger

	c := &Client{}
	kv := opts.Store
	if kv == nil {
		store, closer, err := OpenStore(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		kv = store
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
	vault := credstore.NewVault(kv)

	c.Gateway = gateway.New(gateway.Config{
		BaseURL:     cfg.APIURL,
		Timeout:     cfg.Timeout,
		ExpiredCode: cfg.ExpiredCode,
		LoginRoute:  LoginRoute,
		HTTPClient:  opts.HTTPClient,
	}, vault, ports.LocatorFunc(func(path string) { c.Navigator.Redirect(path) }), log.With().Str("component", "gateway").Logger())
	c.Auth = gateway.NewAuthClient(c.Gateway)
	c.Session = service.NewSessionService(c.Auth, vault, log.With().Str("component", "session").Logger())

	routes := opts.Routes
	if routes == nil {
		routes = domain.DefaultRoutes()
	}
	c.Guard = service.NewNavigationGuard(routes, c.Session, opts.Titles, service.GuardConfig{
		LoginRoute: LoginRoute,
		AppName:    cfg.AppName,
	}, log.With().Str("component", "navigation").Logger())
	c.Navigator = service.NewNavigator(c.Guard)

	c.Toasts = service.NewToastQueue()
	surfaces := opts.Surfaces
	if surfaces == nil {
		surfaces = func() (ports.ConfirmSurface, error) { return nil, ErrNoSurface }
	}
	c.Confirm = service.NewConfirmBroker(surfaces, log.With().Str("component", "confirm").Logger())

	c.wireExpiry(c.Gateway)

	dctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.dispatcher = queue.NewDispatcher(2, log.With().Str("component", "dispatcher").Logger())
	c.dispatcher.Start(dctx)

	if err := c.Session.Hydrate(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("app: hydrate session: %w", err)
	}
	return c, nil
}

// wireExpiry routes n's expiry signal into the session and, once the session
// is torn down, warns the user and sends them to the login route.
func (c *Client) wireExpiry(n ports.ExpiryNotifier) {
	n.RegisterExpiryHandler(c.Session)
	c.Session.OnExpired(func(context.Context) {
		c.Toasts.Warning(domain.ErrSessionExpired.Error())
		c.Navigator.Redirect(LoginRoute)
	})
}

// OpenStore opens the key/value backend for the credential record. The
// returned closer is nil when there is nothing to release.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (ports.KeyValueStore, func() error, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return memory.NewKeyValueStore(), nil, nil
	case config.StoreFile, "":
		path := cfg.Path
		if path == "" {
			path = config.DefaultStorePath()
		}
		s, err := file.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.StoreRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisdb.NewKeyValueStore(client, cfg.Redis.Prefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown credential store %q", cfg.Backend)
	}
}

// WatchSession delivers every session change to fn on a background worker,
// in order. fn never blocks session operations.
func (c *Client) WatchSession(fn func(domain.SessionState)) (cancel func()) {
	return c.Session.Subscribe(func(st domain.SessionState) {
		c.dispatcher.Enqueue(topicSession, func(context.Context) { fn(st) })
	})
}

// WatchToasts delivers every change of the toast list to fn, in order.
func (c *Client) WatchToasts(fn func([]domain.Toast)) (cancel func()) {
	return c.Toasts.Subscribe(func(list []domain.Toast) {
		c.dispatcher.Enqueue(topicToasts, func(context.Context) { fn(list) })
	})
}

// Close flushes pending watcher deliveries and releases the store.
func (c *Client) Close() error {
	c.Toasts.Close()
	c.dispatcher.Stop()
	c.cancel()

	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
