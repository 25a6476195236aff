package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/internal/client"
	"github.com/wolfeidau/flightdesk/internal/kv"
)

// Persisted keys.
const (
	KeyToken     = "auth_token"
	KeyUsername  = "auth_username"
	KeyEmail     = "auth_email"
	KeyRole      = "auth_role"
	KeyCreatedAt = "auth_created_at"
)

// DefaultMaxPasswordAge is how long a password stays fresh.
const DefaultMaxPasswordAge = 90 * 24 * time.Hour

var allKeys = []string{KeyToken, KeyUsername, KeyEmail, KeyRole, KeyCreatedAt}

// ErrNoAuthenticator is returned by Login and Register when the manager has
// no way to reach the auth service.
var ErrNoAuthenticator = errors.New("no authenticator configured")

// Authenticator issues tokens. *client.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, req client.LoginRequest) ([]byte, error)
	Register(ctx context.Context, req client.RegisterRequest) ([]byte, error)
}

// Session is the client-held record of the signed in user.
type Session struct {
	Token              string
	Username           *string
	Email              *string
	CreatedAt          *time.Time
	MustChangePassword bool
}

// Fingerprint identifies the session token without revealing it.
func (s Session) Fingerprint() string {
	return Fingerprint(s.Token)
}

func (s Session) clone() *Session {
	c := s
	if s.Username != nil {
		v := *s.Username
		c.Username = &v
	}
	if s.Email != nil {
		v := *s.Email
		c.Email = &v
	}
	if s.CreatedAt != nil {
		v := *s.CreatedAt
		c.CreatedAt = &v
	}
	return &c
}

// Listener is notified whenever the session changes; nil means signed out.
type Listener func(*Session)

type Option func(*Manager)

// WithClock overrides the time source used for password age checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithMaxPasswordAge overrides DefaultMaxPasswordAge.
func WithMaxPasswordAge(d time.Duration) Option {
	return func(m *Manager) {
		m.maxPasswordAge = d
	}
}

// Manager owns the current session. It hydrates from the store on creation
// and is the only writer of the session keys.
type Manager struct {
	store          kv.Store
	auth           Authenticator
	now            func() time.Time
	maxPasswordAge time.Duration

	mu        sync.RWMutex
	current   *Session
	listeners map[int]Listener
	nextID    int
}

// NewManager creates a manager and hydrates any persisted session.
// auth may be nil when only reads and logout are needed.
func NewManager(store kv.Store, auth Authenticator, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:          store,
		auth:           auth,
		now:            time.Now,
		maxPasswordAge: DefaultMaxPasswordAge,
		listeners:      make(map[int]Listener),
	}

	for _, opt := range opts {
		opt(m)
	}

	current, err := m.hydrate()
	if err != nil {
		return nil, err
	}
	m.current = current

	return m, nil
}

// Login posts credentials and establishes a session from the issued token.
// email is kept with the session for booking history lookups.
func (m *Manager) Login(ctx context.Context, creds client.LoginRequest, email string) (string, error) {
	if m.auth == nil {
		return "", ErrNoAuthenticator
	}

	body, err := m.auth.Login(ctx, creds)
	if err != nil {
		return "", err
	}

	return m.persist(body, creds.Username, email)
}

// Register creates an account and establishes a session the same way Login does.
func (m *Manager) Register(ctx context.Context, req client.RegisterRequest) (string, error) {
	if m.auth == nil {
		return "", ErrNoAuthenticator
	}

	if req.Role == "" {
		req.Role = RoleUser
	}

	body, err := m.auth.Register(ctx, req)
	if err != nil {
		return "", err
	}

	return m.persist(body, req.Username, req.Email)
}

// Logout removes every persisted session key. The server is not contacted.
func (m *Manager) Logout() error {
	m.mu.Lock()
	err := m.store.Delete(allKeys...)
	m.current = nil
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	log.Debug().Msg("session cleared")

	m.publish()
	return nil
}

// MarkPasswordChanged restarts the password age clock after a successful
// password update. It is a no-op without a session.
func (m *Manager) MarkPasswordChanged() error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil
	}

	now := m.now().UTC()
	if err := m.store.Set(KeyCreatedAt, now.Format(time.RFC3339)); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to persist password timestamp: %w", err)
	}

	m.current.CreatedAt = &now
	m.current.MustChangePassword = false
	m.mu.Unlock()

	m.publish()
	return nil
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// IsAdmin reports whether the token's role claim names an administrator.
func (m *Manager) IsAdmin() bool {
	return m.Role() == RoleAdmin
}

func (m *Manager) RequiresPasswordChange() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.current.MustChangePassword
}

// Session returns a copy of the current session.
func (m *Manager) Session() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current.clone(), true
}

// Token returns the bearer token, or an empty string when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Username == nil {
		return ""
	}
	return *m.current.Username
}

func (m *Manager) Email() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Email == nil {
		return ""
	}
	return *m.current.Email
}

// Role returns the persisted role claim, or an empty string.
func (m *Manager) Role() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}

	role, ok, err := m.store.Get(KeyRole)
	if err != nil || !ok {
		return ""
	}
	return role
}

// Subscribe registers fn for session changes and returns a function that
// removes it.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) publish() {
	m.mu.RLock()
	var snapshot *Session
	if m.current != nil {
		snapshot = m.current.clone()
	}
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.RUnlock()

	for _, fn := range listeners {
		if snapshot == nil {
			fn(nil)
			continue
		}
		fn(snapshot.clone())
	}
}

// persist stores the token and its derived attributes and publishes the new session.
func (m *Manager) persist(body []byte, username, email string) (string, error) {
	resp := normalizeAuthResponse(body)

	m.mu.Lock()
	sess, err := m.write(resp, username, email)
	if err == nil {
		m.current = sess
	}
	m.mu.Unlock()

	if err != nil {
		return "", err
	}

	log.Debug().
		Str("user", username).
		Str("fingerprint", sess.Fingerprint()).
		Bool("mustChangePassword", sess.MustChangePassword).
		Msg("session established")

	m.publish()
	return resp.Token, nil
}

func (m *Manager) write(resp authResponse, username, email string) (*Session, error) {
	if err := m.store.Set(KeyToken, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	// a token without a role must not inherit the previous session's role
	if role := extractRole(resp.Token); role != "" {
		if err := m.store.Set(KeyRole, role); err != nil {
			return nil, fmt.Errorf("failed to persist role: %w", err)
		}
	} else if err := m.store.Delete(KeyRole); err != nil {
		return nil, fmt.Errorf("failed to clear role: %w", err)
	}

	if username != "" {
		if err := m.store.Set(KeyUsername, username); err != nil {
			return nil, fmt.Errorf("failed to persist username: %w", err)
		}
	}

	if email != "" {
		if err := m.store.Set(KeyEmail, email); err != nil {
			return nil, fmt.Errorf("failed to persist email: %w", err)
		}
	}

	createdAt := resp.CreatedAt
	switch {
	case createdAt != "":
		if err := m.store.Set(KeyCreatedAt, createdAt); err != nil {
			return nil, fmt.Errorf("failed to persist password timestamp: %w", err)
		}
	case resp.Structured:
		createdAt = m.get(KeyCreatedAt)
	default:
		// a bare token carries no password age, so the session never expires
		if err := m.store.Delete(KeyCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to clear password timestamp: %w", err)
		}
	}

	if email == "" {
		email = m.get(KeyEmail)
	}

	sess := &Session{
		Token:    resp.Token,
		Username: optional(username),
		Email:    optional(email),
	}
	if t, ok := parseCreatedAt(createdAt); ok {
		sess.CreatedAt = &t
	}
	sess.MustChangePassword = m.passwordExpired(sess.CreatedAt)

	return sess, nil
}

func (m *Manager) hydrate() (*Session, error) {
	token, ok, err := m.store.Get(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok || token == "" {
		return nil, nil
	}

	sess := &Session{
		Token:    token,
		Username: optional(m.get(KeyUsername)),
		Email:    optional(m.get(KeyEmail)),
	}
	if t, ok := parseCreatedAt(m.get(KeyCreatedAt)); ok {
		sess.CreatedAt = &t
	}
	sess.MustChangePassword = m.passwordExpired(sess.CreatedAt)

	log.Debug().
		Str("fingerprint", sess.Fingerprint()).
		Bool("mustChangePassword", sess.MustChangePassword).
		Msg("session hydrated")

	return sess, nil
}

// passwordExpired reports whether the password is at least maxPasswordAge old.
// An unknown creation time never expires.
func (m *Manager) passwordExpired(createdAt *time.Time) bool {
	if createdAt == nil {
		return false
	}
	return m.now().Sub(*createdAt) >= m.maxPasswordAge
}

func (m *Manager) get(key string) string {
	v, ok, err := m.store.Get(key)
	if err != nil || !ok {
		return ""
	}
	return v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
