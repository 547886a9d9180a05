package pozeclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Pe-te-r/pozeclient/storage"
)

// Storage keys for the persisted session record and the mirrored tokens.
const (
	sessionRecordKey = "auth-storage"
	accessTokenKey   = "access_token"
	refreshTokenKey  = "refresh_token"
)

// persistedSession is the durable subset of the store's state. Transient
// fields (loading/error) are never written.
type persistedSession struct {
	Data            *Session `json:"data"`
	IsAuthenticated bool     `json:"isAuthenticated"`
}

// SessionStore holds the process-wide authentication state. It is the sole
// owner of the Session; the transport client reads it through the
// TokenSource interface and tears it down through the unauthorized hook.
type SessionStore struct {
	mu      sync.RWMutex
	session *Session
	store   storage.Store
	logger  Logger
}

// NewSessionStore creates a store persisting into st and rehydrates any
// previously saved session before returning.
func NewSessionStore(st storage.Store, opts ...SessionOption) *SessionStore {
	s := &SessionStore{store: st}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Load(); err != nil && s.logger != nil {
		s.logger.Warn("session rehydration failed", "error", err.Error())
	}
	return s
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionLogger sets the logger used for persistence diagnostics.
func WithSessionLogger(l Logger) SessionOption {
	return func(s *SessionStore) { s.logger = l }
}

// Load rehydrates state from durable storage. A missing record leaves the
// store anonymous; a corrupt record is reported and discarded.
func (s *SessionStore) Load() error {
	raw, err := s.store.Get(sessionRecordKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session record: %w", err)
	}

	var rec persistedSession
	if err := json.Unmarshal(raw, &rec); err != nil {
		_ = s.store.Delete(sessionRecordKey)
		return fmt.Errorf("decode session record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.IsAuthenticated && rec.Data != nil {
		copied := *rec.Data
		s.session = &copied
	} else {
		s.session = nil
	}
	return nil
}

// Login transitions anonymous → authenticated and persists the session.
func (s *SessionStore) Login(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := session
	s.session = &copied

	if err := s.persistLocked(); err != nil {
		return err
	}
	if err := s.store.Put(accessTokenKey, []byte(session.Tokens.Access)); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if err := s.store.Put(refreshTokenKey, []byte(session.Tokens.Refresh)); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("session established", "userId", session.UserID, "role", session.Role)
	}
	return nil
}

// Logout transitions to anonymous and clears durable storage. It is
// idempotent: calling it while anonymous is a no-op that still succeeds.
func (s *SessionStore) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil

	if err := s.store.Delete(sessionRecordKey); err != nil {
		return fmt.Errorf("clear session record: %w", err)
	}
	if err := s.store.Delete(accessTokenKey); err != nil {
		return fmt.Errorf("clear access token: %w", err)
	}
	if err := s.store.Delete(refreshTokenKey); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Teardown is the unauthorized hook handed to the transport client. It is
// Logout with errors demoted to log lines, since the 401 path has no way to
// surface a storage failure.
func (s *SessionStore) Teardown() {
	if err := s.Logout(); err != nil && s.logger != nil {
		s.logger.Error("session teardown failed", "error", err.Error())
	}
}

// RefreshAccessToken replaces only the access token, leaving role, user ID
// and refresh token untouched. No-op while anonymous.
func (s *SessionStore) RefreshAccessToken(newToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	s.session.Tokens.Access = newToken

	if err := s.persistLocked(); err != nil {
		return err
	}
	if err := s.store.Put(accessTokenKey, []byte(newToken)); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	return nil
}

// Token implements TokenSource: the current access token, if any.
func (s *SessionStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return "", false
	}
	return s.session.Tokens.Access, true
}

// Current returns a snapshot copy of the session.
func (s *SessionStore) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// IsAuthenticated reports whether a session is established.
func (s *SessionStore) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// AccessTokenExpiresAt parses the access token as an unverified JWT and
// returns its expiry claim. Verification belongs to the server; the client
// only needs the timestamp to schedule a refresh-token exchange.
func (s *SessionStore) AccessTokenExpiresAt() (time.Time, bool) {
	token, ok := s.Token()
	if !ok {
		return time.Time{}, false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// AccessTokenExpiringWithin reports whether the access token expires within
// d. Tokens with no parseable expiry report false.
func (s *SessionStore) AccessTokenExpiringWithin(d time.Duration) bool {
	exp, ok := s.AccessTokenExpiresAt()
	if !ok {
		return false
	}
	return time.Until(exp) < d
}

func (s *SessionStore) persistLocked() error {
	rec := persistedSession{
		Data:            s.session,
		IsAuthenticated: s.session != nil,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := s.store.Put(sessionRecordKey, raw); err != nil {
		return fmt.Errorf("persist session record: %w", err)
	}
	return nil
}
