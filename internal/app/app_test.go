package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/api"
	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/service"
	"github.com/FruitsAI/orange-client/internal/infrastructure/db/memory"
	"github.com/FruitsAI/orange-client/internal/pkg/config"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		APIURL:      url + api.BasePath,
		Timeout:     2 * time.Second,
		ExpiredCode: domain.CodeTokenExpired,
		AppName:     "Orange",
		Store:       config.StoreConfig{Backend: config.StoreMemory},
	}
}

func newClient(t *testing.T, url string, kv *memory.KeyValueStore) *Client {
	t.Helper()
	c, err := New(context.Background(), Options{Config: testConfig(url), Store: kv, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_AgainstStubBackend(t *testing.T) {
	svc := service.NewAuthService(memory.NewUserRepository(), "secret", time.Hour, zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{AuthService: svc, JWTSecret: "secret", Logger: zerolog.Nop()}))
	t.Cleanup(srv.Close)

	kv := memory.NewKeyValueStore()
	c := newClient(t, srv.URL, kv)
	ctx := context.Background()

	if d := c.Navigator.Start("/projects"); d.Target != "/login" {
		t.Fatalf("unauthenticated start must land on login, got %q", d.Target)
	}
	if !c.Session.Register(ctx, domain.Registration{Username: "alice", Name: "Alice", Password: "secret1"}) {
		t.Fatalf("register failed: %s", c.Session.LastError())
	}
	if c.Session.IsAuthenticated() {
		t.Fatalf("register must not log in")
	}
	if c.Session.Login(ctx, "alice", "wrong") || c.Session.LastError() != domain.ErrInvalidCredentials.Error() {
		t.Fatalf("expected server message, got %q", c.Session.LastError())
	}
	if !c.Session.Login(ctx, "alice", "secret1") {
		t.Fatalf("login failed: %s", c.Session.LastError())
	}
	if d := c.Navigator.Navigate("/login"); d.Target != "/dashboard" || d.Title != "Dashboard - Orange" {
		t.Fatalf("authenticated login visit must land on dashboard, got %+v", d)
	}

	if !c.Session.UpdateProfile(ctx, domain.ProfileUpdate{Department: "Finance"}) {
		t.Fatalf("update failed: %s", c.Session.LastError())
	}
	if !c.Session.RefreshUser(ctx) || c.Session.State().Identity.Department != "Finance" {
		t.Fatalf("refresh did not return the stored profile: %+v", c.Session.State().Identity)
	}
	if c.Session.ChangePassword(ctx, "nope", "secret2") {
		t.Fatalf("wrong old password must fail")
	}

	// A second client over the same store picks the session up.
	if other := newClient(t, srv.URL, kv); !other.Session.IsAuthenticated() {
		t.Fatalf("persisted session not hydrated")
	}

	c.Session.Logout(ctx)
	if c.Session.IsAuthenticated() || kv.Len() != 0 {
		t.Fatalf("logout must clear memory and store (%d keys left)", kv.Len())
	}
	if d := c.Navigator.Navigate("/settings"); d.Target != "/login" {
		t.Fatalf("expected login after logout, got %q", d.Target)
	}
}

// expiringBackend accepts one login, then rejects the credential with the
// expiry code on every authenticated call.
type expiringBackend struct {
	logouts atomic.Int32
}

func (b *expiringBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reply := func(code int, msg string, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": msg, "data": data})
	}
	switch r.URL.Path {
	case api.BasePath + "/auth/login":
		reply(0, "ok", map[string]any{"token": "tok123", "user": map[string]any{"id": 1, "username": "alice", "role": "user", "status": 1}})
	case api.BasePath + "/auth/logout":
		b.logouts.Add(1)
		reply(0, "ok", nil)
	default:
		reply(domain.CodeTokenExpired, "token expired", nil)
	}
}

func TestClient_ExpiryLogsOutAndRedirectsOnce(t *testing.T) {
	backend := &expiringBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	kv := memory.NewKeyValueStore()
	c := newClient(t, srv.URL, kv)
	ctx := context.Background()

	if !c.Session.Login(ctx, "alice", "secret") {
		t.Fatalf("login failed: %s", c.Session.LastError())
	}
	if kv.Len() == 0 {
		t.Fatalf("credential not persisted")
	}
	c.Navigator.Start("/projects")

	if c.Session.UpdateProfile(ctx, domain.ProfileUpdate{Name: "Al"}) {
		t.Fatalf("expired credential must fail the call")
	}
	if c.Session.IsAuthenticated() || kv.Len() != 0 {
		t.Fatalf("expiry must clear memory and store")
	}
	if c.Navigator.Current() != LoginRoute {
		t.Fatalf("expected redirect to login, at %q", c.Navigator.Current())
	}

	redirects := 0
	for _, d := range c.Navigator.History() {
		if d.Requested == LoginRoute {
			redirects++
		}
	}
	if redirects != 1 {
		t.Fatalf("expected one redirect, got %d", redirects)
	}
	if n := backend.logouts.Load(); n != 1 {
		t.Fatalf("expected one server logout, got %d", n)
	}
	if toasts := c.Toasts.List(); len(toasts) != 1 || toasts[0].Severity != domain.SeverityWarning {
		t.Fatalf("expected one expiry warning, got %+v", toasts)
	}

	// Without a credential a refresh makes no call and the redirect is not repeated.
	if c.Session.RefreshUser(ctx) {
		t.Fatalf("refresh without credential must report false")
	}
	if got := len(c.Navigator.History()); got != 2 {
		t.Fatalf("unexpected extra transitions: %d", got)
	}
}

func TestClient_WatchersFlushOnClose(t *testing.T) {
	backend := &expiringBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{Config: testConfig(srv.URL), Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var mu sync.Mutex
	var states []domain.SessionState
	var toastLists [][]domain.Toast
	c.WatchSession(func(st domain.SessionState) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})
	c.WatchToasts(func(list []domain.Toast) {
		mu.Lock()
		toastLists = append(toastLists, list)
		mu.Unlock()
	})

	c.Session.Login(context.Background(), "alice", "secret")
	c.Toasts.Success("Login successful")
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) == 0 || !states[len(states)-1].IsAuthenticated() {
		t.Fatalf("session changes not delivered: %+v", states)
	}
	if len(toastLists) != 1 || toastLists[0][0].Message != "Login successful" {
		t.Fatalf("toast changes not delivered: %+v", toastLists)
	}
}

func TestClient_ConfirmWithoutSurface(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1", memory.NewKeyValueStore())

	if _, err := c.Confirm.ConfirmMessage(context.Background(), "sure?"); err == nil {
		t.Fatalf("expected ErrNoSurface")
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	if _, _, err := OpenStore(ctx, config.StoreConfig{Backend: "sqlite"}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	kv, closer, err := OpenStore(ctx, config.StoreConfig{Backend: config.StoreFile, Path: t.TempDir() + "/session.json"})
	if err != nil || closer != nil {
		t.Fatalf("file store: %v", err)
	}
	if err := kv.Set(ctx, "credential", "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
}
