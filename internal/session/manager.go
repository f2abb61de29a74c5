package session

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/azimonti/quantum-entanglement-simulation/internal/events"
	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
)

// Manager is the session registry shared by the HTTP surface and the
// re-preparation tick.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      zerolog.Logger
	bus      *events.Bus
}

// NewManager creates an empty registry.
func NewManager(log zerolog.Logger, bus *events.Bus) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		log:      log.With().Str("component", "session_manager").Logger(),
		bus:      bus,
	}
}

// Create prepares and registers a new session.
func (m *Manager) Create(cfg Config) (*Session, error) {
	s, err := New(cfg, m.log, m.bus)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	if m.bus != nil {
		mode := "joint"
		if s.Single() {
			mode = "single"
		}
		m.bus.Publish(&events.SessionCreatedData{
			SessionID: s.ID(),
			Kind:      cfg.Kind.String(),
			Mode:      mode,
		})
	}
	return s, nil
}

// Get looks a session up by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown session %q", quantum.ErrConfiguration, id)
	}
	return s, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: unknown session %q", quantum.ErrConfiguration, id)
	}

	if m.bus != nil {
		m.bus.Publish(&events.SessionClosedData{SessionID: id})
	}
	return nil
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Tick re-prepares every continuous single-qubit session. Sessions that
// persist their collapse keep the collapsed state until explicitly reset.
func (m *Manager) Tick() {
	m.mu.RLock()
	targets := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.Single() && !s.PersistCollapse() {
			targets = append(targets, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range targets {
		s.Reprepare()
	}
}
