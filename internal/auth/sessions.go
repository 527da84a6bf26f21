package auth

import (
	"sync"
	"time"

	"resumerank/internal/config"
	"resumerank/internal/errors"

	"github.com/google/uuid"
)

// Session is an opaque in-memory handle wrapping provider credentials.
// Sessions live only for the process lifetime; restarts sign everyone out.
type Session struct {
	Token     string
	UserID    string
	Email     string
	IDToken   string
	Refresh   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// StateChange notifies subscribers that a user signed in or out
type StateChange struct {
	UserID   string
	Email    string
	SignedIn bool
}

// SessionManager issues, resolves, and expires sessions, and fans out
// auth-state-changed notifications to subscribers.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	subscribers []chan StateChange
	ttl         time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
	logger      *errors.Logger
}

// NewSessionManager creates a session manager and starts its expiry sweep
func NewSessionManager(cfg config.SessionConfig, logger *errors.Logger) *SessionManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	m := &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
		logger:   logger,
	}

	go m.sweep(interval)
	return m
}

// Create issues a new session for freshly verified credentials
func (m *SessionManager) Create(creds *Credentials) *Session {
	now := time.Now()
	ttl := m.ttl
	if creds.ExpiresIn > 0 && creds.ExpiresIn < ttl {
		ttl = creds.ExpiresIn
	}

	session := &Session{
		Token:     uuid.NewString(),
		UserID:    creds.UserID,
		Email:     creds.Email,
		IDToken:   creds.IDToken,
		Refresh:   creds.RefreshToken,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()

	m.notify(StateChange{UserID: session.UserID, Email: session.Email, SignedIn: true})
	return session
}

// Get resolves a session token. Expired sessions are removed on access.
func (m *SessionManager) Get(token string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.NewAuthError(errors.ErrCodeSessionInvalid,
			"Session not found or signed out", nil)
	}

	if session.Expired() {
		m.Destroy(token)
		return nil, errors.NewAuthError(errors.ErrCodeSessionInvalid,
			"Session expired, sign in again", nil)
	}

	return session, nil
}

// Destroy removes a session and notifies subscribers of the sign-out
func (m *SessionManager) Destroy(token string) {
	m.mu.Lock()
	session, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	m.mu.Unlock()

	if ok {
		m.notify(StateChange{UserID: session.UserID, Email: session.Email, SignedIn: false})
	}
}

// Subscribe returns a channel receiving auth state changes. The channel is
// buffered; slow consumers drop notifications rather than block sign-in.
func (m *SessionManager) Subscribe() <-chan StateChange {
	ch := make(chan StateChange, 16)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

// Count returns the number of live sessions
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the expiry sweep
func (m *SessionManager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *SessionManager) notify(change StateChange) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- change:
		default:
		}
	}
}

func (m *SessionManager) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			var removed int
			for token, session := range m.sessions {
				if session.Expired() {
					delete(m.sessions, token)
					removed++
				}
			}
			m.mu.Unlock()
			if removed > 0 {
				m.logger.Debug("Swept expired sessions", "removed", removed)
			}
		case <-m.stop:
			return
		}
	}
}
