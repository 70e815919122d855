// Package session keeps the process-wide login state: who is logged in and
// with which token. It is the only place that writes the persisted credential.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/apierr"
	"github.com/vasiliy-maslov/storefront/internal/storage"
	"github.com/vasiliy-maslov/storefront/internal/token"
	"github.com/vasiliy-maslov/storefront/internal/user"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

// Storage keys. They are always written and removed together.
const (
	TokenKey = "token"
	UserKey  = "user"
)

const (
	msgLoginFailed    = "Login failed"
	msgRegisterFailed = "Registration failed"
)

// Authenticator is the part of the API the session talks to.
type Authenticator interface {
	Login(ctx context.Context, req user.LoginRequest) (*user.AuthResponse, error)
	Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResponse, error)
}

// Session is a logged-in user together with the token proving it.
type Session struct {
	User  user.User `json:"user"`
	Token string    `json:"-"`
}

type Store struct {
	storage storage.Storage
	auth    Authenticator
	now     func() time.Time

	mu      sync.RWMutex
	user    *user.User
	token   string
	loading bool
}

type Option func(*Store)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns a store that reports Loading until Restore has run.
func NewStore(st storage.Storage, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		storage: st,
		auth:    auth,
		now:     time.Now,
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore picks up a session saved by an earlier run. An expired or broken
// saved session is wiped. Loading is false afterwards in every case.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	tok, okTok, err := s.storage.Get(TokenKey)
	if err != nil {
		log.Error().Err(err).Msg("session: failed to read saved token")
		return
	}
	rawUser, okUser, err := s.storage.Get(UserKey)
	if err != nil {
		log.Error().Err(err).Msg("session: failed to read saved user")
		return
	}
	if !okTok || !okUser {
		return
	}

	if token.IsExpiredAt(tok, s.now()) {
		log.Info().Msg("session: saved token expired, dropping session")
		s.clearLocked()
		return
	}

	var u user.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		log.Warn().Err(err).Msg("session: saved user is unreadable, dropping session")
		s.clearLocked()
		return
	}

	s.token = tok
	s.user = &u
	log.Info().Int64("user_id", u.ID).Str("role", u.Role.String()).Msg("session: restored")
}

// Login never leaves the store half logged in: on any failure it stays
// unauthenticated and the returned error carries a message fit for display.
func (s *Store) Login(ctx context.Context, req user.LoginRequest) (*Session, error) {
	if err := validation.Struct(req, nil); err != nil {
		return nil, err
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("session: login rejected")
		return nil, apierr.Auth(apierr.Message(err, msgLoginFailed), err)
	}

	return s.establish(resp, msgLoginFailed)
}

func (s *Store) Register(ctx context.Context, req user.RegisterRequest) (*Session, error) {
	if err := validation.Struct(req, nil); err != nil {
		return nil, err
	}

	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("session: registration rejected")
		return nil, apierr.Auth(apierr.Message(err, msgRegisterFailed), err)
	}

	return s.establish(resp, msgRegisterFailed)
}

func (s *Store) establish(resp *user.AuthResponse, failMsg string) (*Session, error) {
	if resp.Token == "" {
		return nil, apierr.Auth(failMsg, nil)
	}

	u := resp.User()
	rawUser, err := json.Marshal(u)
	if err != nil {
		return nil, apierr.Auth(failMsg, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.storage.Put(map[string]string{
		TokenKey: resp.Token,
		UserKey:  string(rawUser),
	})
	if err != nil {
		log.Error().Err(err).Msg("session: failed to persist session")
		return nil, apierr.Auth(failMsg, err)
	}

	s.token = resp.Token
	s.user = &u

	log.Info().Int64("user_id", u.ID).Str("role", u.Role.String()).Msg("session: logged in")

	return &Session{User: u, Token: resp.Token}, nil
}

// Logout is idempotent and never talks to the API.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		log.Info().Msg("session: logged out")
	}
	s.clearLocked()
}

func (s *Store) clearLocked() {
	if err := s.storage.Delete(TokenKey, UserKey); err != nil {
		log.Error().Err(err).Msg("session: failed to clear saved session")
	}
	s.token = ""
	s.user = nil
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsAuthenticated re-checks the token expiry on every call.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

func (s *Store) authenticatedLocked() bool {
	return s.token != "" && s.user != nil && !token.IsExpiredAt(s.token, s.now())
}

func (s *Store) HasRole(role user.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked() && s.user.Role == role
}

// User returns a copy of the logged-in user, or nil.
func (s *Store) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticatedLocked() {
		return nil
	}
	u := *s.user
	return &u
}

// Token is attached to outgoing API calls. It is returned even when expired,
// so the API is the one to reject it.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Current returns the active session, or nil.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticatedLocked() {
		return nil
	}
	return &Session{User: *s.user, Token: s.token}
}
