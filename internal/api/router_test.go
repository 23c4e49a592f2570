package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/service"
	"github.com/FruitsAI/orange-client/internal/infrastructure/db/memory"
	"github.com/FruitsAI/orange-client/internal/pkg/token"
)

type stubServer struct {
	*httptest.Server
	t *testing.T
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	svc := service.NewAuthService(memory.NewUserRepository(), "secret", time.Hour, zerolog.Nop())
	e := NewRouter(RouterConfig{
		AuthService: svc,
		JWTSecret:   "secret",
		Logger:      zerolog.Nop(),
		Metrics:     prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &stubServer{Server: srv, t: t}
}

func (s *stubServer) call(method, path, bearer string, body any) domain.Envelope[json.RawMessage] {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.URL+BasePath+path, &buf)
	if err != nil {
		s.t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.t.Fatalf("%s %s: expected 200, got %d", method, path, resp.StatusCode)
	}
	var env domain.Envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		s.t.Fatalf("decode: %v", err)
	}
	return env
}

func TestRouter_AuthFlow(t *testing.T) {
	s := newStubServer(t)

	env := s.call(http.MethodPost, "/auth/register", "", domain.Registration{Username: "alice", Name: "Alice", Password: "secret1"})
	if env.Code != domain.CodeSuccess {
		t.Fatalf("register: %d %s", env.Code, env.Message)
	}
	if env = s.call(http.MethodPost, "/auth/register", "", domain.Registration{Username: "alice", Name: "Alice", Password: "secret1"}); env.Code != domain.CodeParamError {
		t.Fatalf("duplicate register: %d %s", env.Code, env.Message)
	}

	env = s.call(http.MethodPost, "/auth/login", "", domain.LoginRequest{Username: "alice", Password: "secret1"})
	if env.Code != domain.CodeSuccess {
		t.Fatalf("login: %d %s", env.Code, env.Message)
	}
	var res domain.LoginResult
	if err := json.Unmarshal(env.Data, &res); err != nil || res.Token == "" || res.User.Username != "alice" {
		t.Fatalf("unexpected login result %+v (%v)", res, err)
	}

	env = s.call(http.MethodPut, "/users/me", res.Token, domain.ProfileUpdate{Department: "Sales"})
	var id domain.Identity
	if err := json.Unmarshal(env.Data, &id); err != nil || id.Department != "Sales" || id.Name != "Alice" {
		t.Fatalf("profile update: %+v (%v)", id, err)
	}

	if env = s.call(http.MethodPut, "/users/me/password", res.Token, domain.PasswordChange{OldPassword: "wrong", NewPassword: "secret2"}); env.Code != domain.CodeParamError {
		t.Fatalf("wrong old password: %d %s", env.Code, env.Message)
	}
	if env = s.call(http.MethodPut, "/users/me/password", res.Token, domain.PasswordChange{OldPassword: "secret1", NewPassword: "secret2"}); env.Code != domain.CodeSuccess {
		t.Fatalf("change password: %d %s", env.Code, env.Message)
	}
	if env = s.call(http.MethodPost, "/auth/login", "", domain.LoginRequest{Username: "alice", Password: "secret1"}); env.Code != domain.CodeUnauthorized {
		t.Fatalf("old password login: %d %s", env.Code, env.Message)
	}

	if env = s.call(http.MethodPost, "/auth/logout", "", nil); env.Code != domain.CodeSuccess {
		t.Fatalf("logout: %d", env.Code)
	}
}

func TestRouter_CredentialCodes(t *testing.T) {
	s := newStubServer(t)
	expired, _ := token.Issue([]byte("secret"), 1, "alice", "user", time.Minute, time.Now().Add(-time.Hour))
	user, _ := token.Issue([]byte("secret"), 1, "alice", "user", time.Hour, time.Now())

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		want   int
	}{
		{"no credential", http.MethodGet, "/users/me", "", domain.CodeUnauthorized},
		{"garbage credential", http.MethodGet, "/users/me", "garbage", domain.CodeTokenExpired},
		{"expired credential", http.MethodGet, "/users/me", expired, domain.CodeTokenExpired},
		{"valid token for missing user", http.MethodGet, "/users/me", user, domain.CodeNotFound},
		{"admin route as user", http.MethodGet, "/users", user, domain.CodeForbidden},
		{"unknown route", http.MethodGet, "/nowhere", "", domain.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if env := s.call(tt.method, tt.path, tt.bearer, nil); env.Code != tt.want {
				t.Fatalf("want code %d, got %d (%s)", tt.want, env.Code, env.Message)
			}
		})
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newStubServer(t)

	resp, err := http.Get(s.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %d", resp.StatusCode)
	}

	resp, err = http.Get(s.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "orange_stub_requests_total") {
		t.Fatalf("request metrics not exported")
	}
}
