package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/pkg/logger"
)

type entry struct {
	state *State
	mu    sync.Mutex
	// lastActive is read and written only under the Manager's mutex, so the
	// sweeper never has to touch the state itself.
	lastActive time.Time
}

// Manager owns every live conversation. Sessions are fully independent;
// within one session turns are strictly serialized by the per-session lock so
// two in-flight utterances can never observe an inconsistent "previous turn".
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	capacity int
	maxIdle  time.Duration
}

func NewManager(capacity int, maxIdle time.Duration) *Manager {
	if maxIdle <= 0 {
		maxIdle = 30 * time.Minute
	}
	return &Manager{
		sessions: make(map[string]*entry),
		capacity: capacity,
		maxIdle:  maxIdle,
	}
}

// Acquire returns the session's state with its lock held, creating the
// session on first use. The caller must call release when the turn is done.
func (m *Manager) Acquire(sessionID string) (state *State, release func()) {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok {
		e = &entry{state: NewState(sessionID, m.capacity)}
		m.sessions[sessionID] = e
		logger.Debug("Session created", zap.String("session_id", sessionID))
	}
	e.lastActive = time.Now()
	m.mu.Unlock()

	e.mu.Lock()
	return e.state, e.mu.Unlock
}

// Count reports how many sessions are currently held in memory.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// End drops a session and its history.
func (m *Manager) End(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Sweep evicts sessions idle longer than maxIdle. Called periodically from a
// background goroutine in the server. Idleness is judged from the entry's
// lastActive, never from the state, so the sweeper needs no per-session lock
// to read history; a session whose lock is held has a turn in flight and is
// left alone.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, e := range m.sessions {
		if now.Sub(e.lastActive) <= m.maxIdle {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		e.mu.Unlock()
		delete(m.sessions, id)
		evicted++
	}

	if evicted > 0 {
		logger.Info("Idle sessions evicted", zap.Int("count", evicted))
	}
	return evicted
}
