// Package gateway is the single point every backend request goes through.
//
// The Gateway injects the bearer credential, classifies each reply into
// success, session expiry, business error or transport error, and reports
// expiry to a late-bound ports.ExpiryHandler. It never imports the session
// layer; the session service registers itself at startup.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
	"github.com/FruitsAI/orange-client/internal/infrastructure/metrics"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultLoginRoute = "/login"
	maxBodyBytes      = 4 << 20
	// HeaderRequestID correlates a client call with backend logs.
	HeaderRequestID = "X-Request-ID"
)

var errNoEnvelope = errors.New("response carried no envelope")

// Outcome is the classification of one call.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeSessionExpired Outcome = "session_expired"
	OutcomeBusinessError  Outcome = "business_error"
	OutcomeTransportError Outcome = "transport_error"
)

// Config holds gateway settings. Zero values get defaults.
type Config struct {
	// BaseURL is prefixed to every request path, e.g. "http://localhost:3456/api/v1".
	BaseURL string
	// Timeout bounds each call; an elapsed call is a transport error.
	Timeout time.Duration
	// ExpiredCode is the envelope code that forces logout.
	ExpiredCode int
	// LoginRoute is where the fallback expiry path sends the application.
	LoginRoute string
	HTTPClient *http.Client
}

// Request is one call through the gateway.
type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
}

var _ ports.ExpiryNotifier = (*Gateway)(nil)

// Gateway wraps outbound HTTP calls to the backend.
type Gateway struct {
	cfg   Config
	http  *http.Client
	creds ports.CredentialSource
	loc   ports.Locator
	log   zerolog.Logger

	mu       sync.RWMutex
	onExpiry ports.ExpiryHandler
}

// New builds a Gateway. loc may be nil when nothing can be redirected.
func New(cfg Config, creds ports.CredentialSource, loc ports.Locator, log zerolog.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ExpiredCode == 0 {
		cfg.ExpiredCode = domain.CodeTokenExpired
	}
	if cfg.LoginRoute == "" {
		cfg.LoginRoute = defaultLoginRoute
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Gateway{
		cfg:   cfg,
		http:  httpClient,
		creds: creds,
		loc:   loc,
		log:   log,
	}
}

// RegisterExpiryHandler sets the handler notified on session expiry. It is
// meant to be called once at startup; a later call replaces the previous
// handler (last writer wins, which keeps hot-reloaded wiring working). nil
// unregisters and re-enables the fallback path.
func (g *Gateway) RegisterExpiryHandler(h ports.ExpiryHandler) {
	g.mu.Lock()
	g.onExpiry = h
	g.mu.Unlock()
}

func (g *Gateway) expiryHandler() ports.ExpiryHandler {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.onExpiry
}

// Do sends req and classifies the reply. On success it returns the envelope
// with the raw data payload; otherwise one of *domain.BusinessError,
// *domain.SessionExpiredError or *domain.TransportError.
func (g *Gateway) Do(ctx context.Context, req Request) (*domain.Envelope[json.RawMessage], error) {
	start := time.Now()
	reqID := uuid.NewString()

	env, status, err := g.roundTrip(ctx, req, reqID)
	outcome, err := g.classify(ctx, env, status, err)

	metrics.RequestsTotal.WithLabelValues(req.Method, string(outcome)).Inc()
	metrics.RequestDuration.WithLabelValues(string(outcome)).Observe(time.Since(start).Seconds())

	evt := g.log.Debug()
	if outcome == OutcomeTransportError || outcome == OutcomeSessionExpired {
		evt = g.log.Warn()
	}
	evt.Str("method", req.Method).
		Str("path", req.Path).
		Str("request_id", reqID).
		Int("status", status).
		Str("outcome", string(outcome)).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("gateway request")

	if err != nil {
		return nil, err
	}
	return env, nil
}

// wireEnvelope distinguishes a missing code from code 0.
type wireEnvelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// roundTrip performs the HTTP exchange. A nil envelope with a nil error means
// a response arrived without a parseable envelope.
func (g *Gateway) roundTrip(ctx context.Context, r Request, reqID string) (*domain.Envelope[json.RawMessage], int, error) {
	var body io.Reader
	if r.Body != nil {
		raw, err := json.Marshal(r.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, r.Method, g.url(r.Path, r.Query), body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	g.authorize(ctx, req)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	var wire wireEnvelope
	if err := json.Unmarshal(raw, &wire); err != nil || wire.Code == nil {
		return nil, resp.StatusCode, nil
	}
	return &domain.Envelope[json.RawMessage]{
		Code:    *wire.Code,
		Message: wire.Message,
		Data:    wire.Data,
	}, resp.StatusCode, nil
}

// authorize attaches the persisted credential. A missing credential is normal
// for login and register; a store failure is logged and the call proceeds
// unauthenticated.
func (g *Gateway) authorize(ctx context.Context, req *http.Request) {
	if g.creds == nil {
		return
	}
	tok, err := g.creds.Credential(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("credential read failed, sending unauthenticated")
		return
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

func (g *Gateway) url(path string, query url.Values) string {
	u := g.cfg.BaseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (g *Gateway) classify(ctx context.Context, env *domain.Envelope[json.RawMessage], status int, err error) (Outcome, error) {
	switch {
	case err != nil:
		return OutcomeTransportError, &domain.TransportError{Status: status, Err: err}
	// Only a 401 without an envelope means expiry. A 401 that carries an
	// envelope is judged by its code like any other status, so a non-expiry
	// code on a 401 surfaces as a business error.
	case env == nil && status == http.StatusUnauthorized:
		return OutcomeSessionExpired, g.expire(ctx, 0, "")
	case env == nil:
		return OutcomeTransportError, &domain.TransportError{Status: status, Err: errNoEnvelope}
	case env.Code == domain.CodeSuccess:
		return OutcomeSuccess, nil
	case env.Code == g.cfg.ExpiredCode:
		return OutcomeSessionExpired, g.expire(ctx, env.Code, env.Message)
	default:
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return OutcomeBusinessError, &domain.BusinessError{Code: env.Code, Message: msg}
	}
}

// expire runs the registered handler, or clears the credentials and sends the
// application to the login route when none is registered.
func (g *Gateway) expire(ctx context.Context, code int, message string) error {
	if h := g.expiryHandler(); h != nil {
		metrics.SessionExpirationsTotal.WithLabelValues("hook").Inc()
		h.SessionExpired(ctx)
	} else {
		metrics.SessionExpirationsTotal.WithLabelValues("fallback").Inc()
		if g.creds != nil {
			if err := g.creds.Clear(context.WithoutCancel(ctx)); err != nil {
				g.log.Error().Err(err).Msg("fallback credential clear failed")
			}
		}
		if g.loc != nil {
			g.loc.Redirect(g.cfg.LoginRoute)
		}
	}
	return &domain.SessionExpiredError{Code: code, Message: message}
}
