package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
	"github.com/FruitsAI/orange-client/internal/pkg/token"
)

// logoutKey marks the context of the logout server call, so an expiry hook
// fired by that very call does not re-enter Logout.
type logoutKey struct{}

var errSessionChanged = errors.New("session changed during request")

// SessionService owns the in-memory session and is the only writer of the
// persisted credential record.
//
// Operations are not serialized: two concurrent logins both run and the last
// one to finish wins. mu only protects field access. commit is held across
// each vault write and the matching memory write, so a logout never lands
// between the two; neither lock is held across a backend call.
type SessionService struct {
	api   ports.AuthAPI
	vault ports.CredentialVault
	log   zerolog.Logger
	now   func() time.Time

	commit sync.Mutex

	mu        sync.RWMutex
	state     domain.SessionState
	inflight  int
	retryable bool
	listeners map[int]func(domain.SessionState)
	nextID    int
	onExpired []func(ctx context.Context)

	logout singleflight.Group
}

// NewSessionService returns an empty session; call Hydrate to load the
// persisted record.
func NewSessionService(api ports.AuthAPI, vault ports.CredentialVault, log zerolog.Logger) *SessionService {
	return &SessionService{
		api:       api,
		vault:     vault,
		log:       log,
		now:       time.Now,
		listeners: make(map[int]func(domain.SessionState)),
	}
}

// Hydrate loads the persisted record at process start. An identity stored
// without a credential is dropped from both memory and storage.
func (s *SessionService) Hydrate(ctx context.Context) error {
	s.commit.Lock()
	err := s.hydrate(ctx)
	s.commit.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *SessionService) hydrate(ctx context.Context) error {
	cred, err := s.vault.Credential(ctx)
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}
	id, err := s.vault.Identity(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored identity unreadable, dropping it")
		id = nil
		if cred != "" {
			if err := s.vault.SaveIdentity(ctx, nil); err != nil {
				return fmt.Errorf("hydrate session: %w", err)
			}
		}
	}
	if cred == "" && id != nil {
		s.log.Warn().Int64("user_id", id.ID).Msg("identity stored without credential, clearing")
		if err := s.vault.Clear(ctx); err != nil {
			return fmt.Errorf("hydrate session: %w", err)
		}
		id = nil
	}

	s.mu.Lock()
	s.state.Credential = cred
	s.state.Identity = id
	s.mu.Unlock()
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

// IsAuthenticated is the authentication predicate: a credential is present.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Credential != ""
}

// State returns a snapshot of the session.
func (s *SessionService) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *SessionService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

func (s *SessionService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LastError
}

// LastErrorRetryable reports whether the last failure was a transport error,
// which a view may offer to retry, rather than a problem with the input.
func (s *SessionService) LastErrorRetryable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LastError != "" && s.retryable
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func unregisters it.
func (s *SessionService) Subscribe(fn func(domain.SessionState)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// OnExpired registers fn to run after an expiry-driven logout.
func (s *SessionService) OnExpired(fn func(ctx context.Context)) {
	s.mu.Lock()
	s.onExpired = append(s.onExpired, fn)
	s.mu.Unlock()
}

// ── Operations ────────────────────────────────────────────────────────────────

// Login authenticates and stores the returned credential and identity. On
// failure the session is left as it was.
func (s *SessionService) Login(ctx context.Context, username, password string) bool {
	s.begin()
	err := s.login(ctx, username, password)
	return s.end("login", err)
}

func (s *SessionService) login(ctx context.Context, username, password string) error {
	res, err := s.api.Login(ctx, domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	s.commit.Lock()
	defer s.commit.Unlock()

	prev := s.State()
	if err := s.vault.Save(ctx, res.Token, res.User); err != nil {
		s.restore(ctx, prev)
		return fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.state.Credential = res.Token
	s.state.Identity = cloneIdentity(res.User)
	s.mu.Unlock()

	s.log.Info().Str("username", username).Msg("logged in")
	return nil
}

// Register creates an account. It does not log in.
func (s *SessionService) Register(ctx context.Context, req domain.Registration) bool {
	s.begin()
	err := s.api.Register(ctx, req)
	return s.end("register", err)
}

// Logout ends the session. The server call is best effort; local state is
// cleared whatever it returns. Safe to call repeatedly, concurrently, and
// from the gateway's expiry hook while a logout is already running.
func (s *SessionService) Logout(ctx context.Context) {
	if ctx.Value(logoutKey{}) != nil {
		return
	}
	_, _, _ = s.logout.Do("logout", func() (any, error) {
		s.doLogout(ctx)
		return nil, nil
	})
}

func (s *SessionService) doLogout(ctx context.Context) {
	local := context.WithoutCancel(ctx)

	s.commit.Lock()
	if !s.IsAuthenticated() {
		if err := s.vault.Clear(local); err != nil {
			s.log.Warn().Err(err).Msg("clear credentials failed")
		}
		s.commit.Unlock()
		return
	}
	s.commit.Unlock()

	if err := s.api.Logout(context.WithValue(ctx, logoutKey{}, true)); err != nil {
		s.log.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
	}

	s.commit.Lock()
	if err := s.vault.Clear(local); err != nil {
		s.log.Error().Err(err).Msg("clear credentials failed")
	}
	s.mu.Lock()
	s.state.Credential = ""
	s.state.Identity = nil
	s.mu.Unlock()
	s.commit.Unlock()
	s.notify()

	s.log.Info().Msg("logged out")
}

// SessionExpired implements ports.ExpiryHandler: the backend rejected the
// credential, so the session is torn down and OnExpired callbacks run.
func (s *SessionService) SessionExpired(ctx context.Context) {
	if ctx.Value(logoutKey{}) != nil {
		return
	}
	wasAuthenticated := s.IsAuthenticated()
	s.Logout(ctx)
	if !wasAuthenticated {
		return
	}

	s.mu.RLock()
	callbacks := append([]func(context.Context){}, s.onExpired...)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn(ctx)
	}
}

// RefreshUser reloads the identity. Without a credential it does nothing. Any
// failure, or a credential already past its exp claim, logs out instead of
// surfacing an error.
func (s *SessionService) RefreshUser(ctx context.Context) bool {
	s.mu.RLock()
	cred := s.state.Credential
	s.mu.RUnlock()
	if cred == "" {
		return false
	}

	if exp, ok := token.Expiry(cred); ok && !s.now().Before(exp) {
		s.log.Info().Time("expired_at", exp).Msg("credential expired locally, logging out")
		s.Logout(ctx)
		return false
	}

	id, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.log.Info().Err(err).Msg("refresh failed, logging out")
		s.Logout(ctx)
		return false
	}
	if err := s.storeIdentity(ctx, cred, id); err != nil {
		s.log.Warn().Err(err).Msg("refreshed identity not stored")
		return false
	}
	return true
}

// UpdateProfile sends a partial profile update and stores the returned identity.
func (s *SessionService) UpdateProfile(ctx context.Context, req domain.ProfileUpdate) bool {
	s.begin()
	err := s.updateProfile(ctx, req)
	return s.end("update_profile", err)
}

func (s *SessionService) updateProfile(ctx context.Context, req domain.ProfileUpdate) error {
	s.mu.RLock()
	cred := s.state.Credential
	s.mu.RUnlock()

	id, err := s.api.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	return s.storeIdentity(ctx, cred, id)
}

// ChangePassword changes the account password. The session is unchanged.
func (s *SessionService) ChangePassword(ctx context.Context, oldPassword, newPassword string) bool {
	s.begin()
	err := s.api.ChangePassword(ctx, domain.PasswordChange{OldPassword: oldPassword, NewPassword: newPassword})
	return s.end("change_password", err)
}

// ── Internals ─────────────────────────────────────────────────────────────────

// storeIdentity writes id for the credential it was fetched with. If the
// session changed meanwhile (logout, another login) the result is dropped.
// Every credential change happens under commit, so the check stays valid
// until both writes are done.
func (s *SessionService) storeIdentity(ctx context.Context, cred string, id *domain.Identity) error {
	if err := s.commitIdentity(ctx, cred, id); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *SessionService) commitIdentity(ctx context.Context, cred string, id *domain.Identity) error {
	s.commit.Lock()
	defer s.commit.Unlock()

	s.mu.RLock()
	current := s.state.Credential
	prev := cloneIdentity(s.state.Identity)
	s.mu.RUnlock()
	if cred == "" || current != cred {
		return errSessionChanged
	}

	if err := s.vault.SaveIdentity(ctx, id); err != nil {
		if rbErr := s.vault.SaveIdentity(context.WithoutCancel(ctx), prev); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("identity rollback failed")
		}
		return fmt.Errorf("save identity: %w", err)
	}

	s.mu.Lock()
	s.state.Identity = cloneIdentity(id)
	s.mu.Unlock()
	return nil
}

// restore puts the persisted record back to the in-memory state after a
// failed write.
func (s *SessionService) restore(ctx context.Context, prev domain.SessionState) {
	if err := s.vault.Save(context.WithoutCancel(ctx), prev.Credential, prev.Identity); err != nil {
		s.log.Error().Err(err).Msg("credential rollback failed")
	}
}

func (s *SessionService) begin() {
	s.mu.Lock()
	s.inflight++
	s.state.LastError = ""
	s.retryable = false
	s.mu.Unlock()
	s.notify()
}

func (s *SessionService) end(op string, err error) bool {
	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.state.LastError = domain.Message(err, op+" failed")
		s.retryable = domain.IsTransport(err)
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.log.Info().Str("operation", op).Err(err).Msg("session operation failed")
		return false
	}
	return true
}

func (s *SessionService) snapshotLocked() domain.SessionState {
	st := s.state
	st.Identity = cloneIdentity(s.state.Identity)
	st.Loading = s.inflight > 0
	return st
}

func (s *SessionService) notify() {
	s.mu.RLock()
	st := s.snapshotLocked()
	fns := make([]func(domain.SessionState), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(st)
	}
}

func cloneIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
