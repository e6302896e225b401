// Package session holds the signed-in user and bearer token, persisted to a
// local key-value store so a login survives restarts until logout.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	KeyToken = "auth_token"
	KeyUser  = "user_data"

	// MockToken is the only bearer token the bundled API server accepts by default.
	MockToken = "mock-token"

	DefaultLoginDelay = time.Second
)

// KV is the durable storage the session persists into.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// MockUser is the identity every mock login produces.
var MockUser = User{
	ID:         "mock-user-id",
	Email:      "user@company.com",
	Name:       "John Doe",
	Department: "Sales",
}

type State struct {
	Authenticated bool
	User          User
}

type Options struct {
	// LoginDelay simulates the identity-provider round trip. Zero means no delay.
	LoginDelay time.Duration
	Logger     *slog.Logger
}

// Session is safe for concurrent use; transport goroutines read Token while
// the UI loop logs in and out.
type Session struct {
	kv    KV
	delay time.Duration
	log   *slog.Logger

	mu    sync.RWMutex
	token string
	user  User
	authd bool
}

func New(kv KV, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Session{kv: kv, delay: opts.LoginDelay, log: log}
}

// Initialize restores a persisted session. It never fails: unreadable or
// corrupt state is logged and treated as signed out.
func (s *Session) Initialize(ctx context.Context) State {
	token, okToken, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		s.log.Warn("session: read token", "err", err)
		return s.reset()
	}
	raw, okUser, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		s.log.Warn("session: read user", "err", err)
		return s.reset()
	}
	if !okToken || !okUser || token == "" {
		return s.reset()
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn("session: decode user", "err", err)
		return s.reset()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user, s.authd = token, u, true
	return State{Authenticated: true, User: u}
}

func (s *Session) reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user, s.authd = "", User{}, false
	return State{}
}

// Login performs the mock sign-in and persists the result.
func (s *Session) Login(ctx context.Context) (State, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return State{}, ctx.Err()
		case <-t.C:
		}
	}

	u := MockUser
	b, err := json.Marshal(u)
	if err != nil {
		return State{}, err
	}
	if err := s.kv.Set(ctx, KeyToken, MockToken); err != nil {
		return State{}, fmt.Errorf("persist token: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUser, string(b)); err != nil {
		return State{}, fmt.Errorf("persist user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user, s.authd = MockToken, u, true
	s.log.Info("session: signed in", "user", u.Email)
	return State{Authenticated: true, User: u}, nil
}

// Logout clears persisted and in-memory state. In-memory state is cleared even
// when the store fails.
func (s *Session) Logout(ctx context.Context) error {
	s.reset()
	if err := s.kv.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info("session: signed out")
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authd
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Authenticated: s.authd, User: s.user}
}
