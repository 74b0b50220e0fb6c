package state

import (
	"context"
	"sync"
	"time"

	"github.com/m3rciful/shopbot/core/logger"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryManager constructs an in-memory Manager implementation.
// A non-positive ttl falls back to DefaultTTL.
func NewMemoryManager(ttl time.Duration) Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryManager{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// expired reports whether the session outlived the TTL. Caller holds a lock.
func (m *memoryManager) expired(sess *Session) bool {
	return m.now().Sub(sess.TouchedAt) > m.ttl
}

// live returns the user's session if it exists and has not expired.
// Expired sessions are dropped. Caller must hold the write lock.
func (m *memoryManager) live(userID int64) (*Session, bool) {
	sess, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	if m.expired(sess) {
		delete(m.sessions, userID)
		logger.Debug(context.Background(), "tg", "fsm.session.expired",
			slog.Int64("user_id", userID),
			slog.String("state", string(sess.State)),
		)
		return nil, false
	}
	return sess, true
}

func (m *memoryManager) touch(userID int64) *Session {
	sess, ok := m.live(userID)
	if !ok {
		sess = &Session{TempData: make(map[string]interface{})}
		m.sessions[userID] = sess
	}
	sess.TouchedAt = m.now()
	return sess
}

// Get returns the session for a user if it exists, otherwise a default idle session.
func (m *memoryManager) Get(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.live(userID); ok {
		return sess
	}
	return &Session{State: StateIdle, TempData: make(map[string]interface{})}
}

// Set updates the state for a user, creating a new session if necessary.
func (m *memoryManager) Set(userID int64, state State) {
	m.SetState(userID, state)
}

// SetTemp stores a temporary key/value pair for the given user session.
func (m *memoryManager) SetTemp(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(userID).TempData[key] = value
}

// GetTemp retrieves a temporary value by key for the given user session.
func (m *memoryManager) GetTemp(userID int64, key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.live(userID)
	if !ok {
		return nil, false
	}
	val, ok := sess.TempData[key]
	return val, ok
}

// GetTempInt64 retrieves a temporary value by key and asserts it as int64.
func (m *memoryManager) GetTempInt64(userID int64, key string) (int64, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return 0, false
	}
	v, ok := val.(int64)
	if !ok {
		return 0, false
	}
	return v, true
}

// GetTempString retrieves a temporary value by key and asserts it as string.
func (m *memoryManager) GetTempString(userID int64, key string) (string, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return "", false
	}
	v, ok := val.(string)
	if !ok {
		return "", false
	}
	return v, true
}

// ClearTemp removes a temporary key/value pair for the given user session.
func (m *memoryManager) ClearTemp(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.live(userID); ok {
		delete(sess.TempData, key)
	}
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}

// SetState sets the FSM state for the given user.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(userID).State = st
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.live(userID); ok {
		return sess.State
	}
	return StateIdle
}

// ClearState resets the FSM state to idle for a user without removing session data.
func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.live(userID); ok {
		sess.State = StateIdle
	}
}

// HasState checks if a user has an active state other than idle.
func (m *memoryManager) HasState(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.live(userID)
	return ok && sess.State != StateIdle
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.HasState(userID)
}

// ManagerHandler executes the handler function registered for the user's current state, if any.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if handler, ok := fsmHandlers[current]; ok {
		return handler(c)
	}
	return nil
}
