package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// stubDoer records requests and answers with a canned envelope.
type stubDoer struct {
	requests []Request
	code     int
	message  string
	data     any
	err      error
}

func (s *stubDoer) Do(_ context.Context, req Request) (*domain.Envelope[json.RawMessage], error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	raw, _ := json.Marshal(s.data)
	return &domain.Envelope[json.RawMessage]{Code: s.code, Message: s.message, Data: raw}, nil
}

func TestAuthClient_Login(t *testing.T) {
	d := &stubDoer{data: map[string]any{
		"token": "tok123",
		"user":  map[string]any{"id": 1, "username": "alice", "role": "user", "status": 1},
	}}
	c := NewAuthClient(d)

	res, err := c.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "tok123" || res.User == nil || res.User.Username != "alice" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(d.requests) != 1 || d.requests[0].Method != http.MethodPost || d.requests[0].Path != PathLogin {
		t.Fatalf("unexpected request %+v", d.requests)
	}
}

func TestAuthClient_LoginWithoutTokenFails(t *testing.T) {
	c := NewAuthClient(&stubDoer{data: map[string]any{"user": nil}})

	if _, err := c.Login(context.Background(), domain.LoginRequest{Username: "a", Password: "b"}); !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
}

func TestAuthClient_LoginWithoutUserFails(t *testing.T) {
	c := NewAuthClient(&stubDoer{data: map[string]any{"token": "tok123", "user": nil}})

	res, err := c.Login(context.Background(), domain.LoginRequest{Username: "a", Password: "b"})
	if !domain.IsBusiness(err) || res != nil {
		t.Fatalf("expected business error, got %+v %v", res, err)
	}
	if !strings.Contains(err.Error(), "no user") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAuthClient_ValidationStopsRequest(t *testing.T) {
	d := &stubDoer{}
	c := NewAuthClient(d)
	ctx := context.Background()

	cases := map[string]error{
		"login":    func() error { _, err := c.Login(ctx, domain.LoginRequest{Username: "alice"}); return err }(),
		"register": c.Register(ctx, domain.Registration{Username: "bob", Name: "Bob", Password: "123"}),
		"password": c.ChangePassword(ctx, domain.PasswordChange{OldPassword: "old", NewPassword: "short"}),
		"profile":  func() error { _, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Email: "bad"}); return err }(),
	}
	for name, err := range cases {
		var be *domain.BusinessError
		if !errors.As(err, &be) || be.Code != domain.CodeParamError {
			t.Errorf("%s: expected param error, got %v", name, err)
		}
	}
	if len(d.requests) != 0 {
		t.Fatalf("invalid payloads must not be sent, got %d requests", len(d.requests))
	}
}

func TestAuthClient_RegisterMessage(t *testing.T) {
	c := NewAuthClient(&stubDoer{})
	err := c.Register(context.Background(), domain.Registration{Name: "Bob", Password: "secret1"})
	if err == nil || !strings.Contains(err.Error(), "username is required") {
		t.Fatalf("expected field message, got %v", err)
	}
}

func TestAuthClient_Endpoints(t *testing.T) {
	d := &stubDoer{data: map[string]any{"id": 1, "username": "alice", "name": "Alice"}}
	c := NewAuthClient(d)
	ctx := context.Background()

	if err := c.Register(ctx, domain.Registration{Username: "alice", Name: "Alice", Password: "secret"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	me, err := c.CurrentUser(ctx)
	if err != nil || me.Name != "Alice" {
		t.Fatalf("current user: %+v %v", me, err)
	}
	if _, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Name: "Alice B"}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if err := c.ChangePassword(ctx, domain.PasswordChange{OldPassword: "secret", NewPassword: "secret2"}); err != nil {
		t.Fatalf("change password: %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, PathRegister},
		{http.MethodPost, PathLogout},
		{http.MethodGet, PathCurrentUser},
		{http.MethodPut, PathCurrentUser},
		{http.MethodPut, PathChangePassword},
	}
	if len(d.requests) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(d.requests))
	}
	for i, w := range want {
		if d.requests[i].Method != w.method || d.requests[i].Path != w.path {
			t.Errorf("request %d = %s %s, want %s %s", i, d.requests[i].Method, d.requests[i].Path, w.method, w.path)
		}
	}
}

func TestAuthClient_PropagatesGatewayError(t *testing.T) {
	c := NewAuthClient(&stubDoer{err: &domain.SessionExpiredError{Code: domain.CodeTokenExpired}})
	if _, err := c.CurrentUser(context.Background()); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}
}

func TestAuthClient_ListUsers(t *testing.T) {
	d := &stubDoer{data: map[string]any{
		"list":      []map[string]any{{"id": 3, "username": "cat"}},
		"total":     3,
		"page":      2,
		"page_size": 2,
	}}
	c := NewAuthClient(d)

	page, err := c.ListUsers(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || len(page.List) != 1 || page.List[0].Username != "cat" {
		t.Fatalf("unexpected page %+v", page)
	}
	req := d.requests[0]
	if req.Method != http.MethodGet || req.Path != PathUsers || req.Query.Get("page") != "2" || req.Query.Get("page_size") != "2" {
		t.Fatalf("unexpected request %+v", req)
	}
}
