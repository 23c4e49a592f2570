package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/api/handler"
	"github.com/FruitsAI/orange-client/internal/api/middleware"
	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// RouterConfig carries the dependencies of the stub backend.
type RouterConfig struct {
	AuthService ports.AuthService
	JWTSecret   string
	Logger      zerolog.Logger
	// Checks feed the readiness probe.
	Checks map[string]handler.Check
	// Metrics, when set, receives request metrics served on /metrics.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if cfg.Metrics != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "orange_stub",
			Registerer: cfg.Metrics,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: cfg.Metrics}))
	}
	// Renders errors itself so the metrics above see the final status.
	e.Use(requestLogger(cfg.Logger))

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(cfg.Checks).Readiness)

	authHandler := handler.NewAuthHandler(cfg.AuthService)
	v1 := e.Group(BasePath)

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/logout", authHandler.Logout)

	// --- Authenticated routes ---
	users := v1.Group("/users", middleware.Auth(cfg.JWTSecret))
	users.GET("/me", authHandler.CurrentUser)
	users.PUT("/me", authHandler.UpdateProfile)
	users.PUT("/me/password", authHandler.ChangePassword)
	users.GET("", authHandler.ListUsers, middleware.RequireRole(domain.RoleAdmin))

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Int("status", c.Response().Status).
				Dur("elapsed", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
