// Package session holds the authenticated user of this process: the bearer
// token, the username and the role handed out by the auth service.
package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// Session is what a successful login leaves behind
type Session struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Role     string `yaml:"role"`
}

// Authenticated reports whether the session carries a token
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// IsAdmin reports whether the role grants administration screens
func (s Session) IsAdmin() bool {
	return strings.Contains(strings.ToUpper(s.Role), "ADMIN")
}

// Provider is the read-only view of the current session. Components that
// only need the token depend on this, never on Manager.
type Provider interface {
	Current() Session
	Token() string
}

// Manager owns the process-wide session. It is initialized from its Store
// with Init and torn down with Clear.
type Manager struct {
	mu      sync.RWMutex
	store   Store
	current Session
}

// NewManager creates a manager that persists through store
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Init loads the persisted session, if any
func (m *Manager) Init() error {
	s, err := m.store.Load()
	if errors.Is(err, ErrNoSession) {
		log.Printf("session: no saved session")
		return nil
	}
	if err != nil {
		return fmt.Errorf("while loading saved session: %w", err)
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	log.Printf("session: restored session for %s", s.Username)
	return nil
}

func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) Token() string {
	return m.Current().Token
}

// Set replaces and persists the current session
func (m *Manager) Set(s Session) error {
	if err := m.store.Save(s); err != nil {
		return fmt.Errorf("while saving session: %w", err)
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

// Clear forgets the session, in memory and on disk
func (m *Manager) Clear() error {
	m.mu.Lock()
	username := m.current.Username
	m.current = Session{}
	m.mu.Unlock()
	if err := m.store.Delete(); err != nil {
		return fmt.Errorf("while deleting saved session: %w", err)
	}
	log.Printf("session: cleared session for %s", username)
	return nil
}

type static struct {
	session Session
}

// Static returns a Provider that always answers with s
func Static(s Session) Provider {
	return static{session: s}
}

func (s static) Current() Session { return s.session }
func (s static) Token() string    { return s.session.Token }

var _ Provider = (*Manager)(nil)
