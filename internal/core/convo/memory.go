package convo

import (
	"context"
	"sync"
	"time"

	ptime "touchline/internal/platform/time"
)

// MemoryStore is the in-process Store; safe for concurrent use
// a coarse map lock guards session lookup while each session carries
// its own lock so appends from the same session serialize without
// blocking unrelated sessions
type MemoryStore struct {
	clock ptime.Clock

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu  sync.Mutex
	ctx Context
}

// NewMemoryStore builds a MemoryStore on the given clock; a nil clock
// means wall time
func NewMemoryStore(clock ptime.Clock) *MemoryStore {
	if clock == nil {
		clock = ptime.Wall{}
	}
	return &MemoryStore{clock: clock, sessions: make(map[string]*session)}
}

// Get implements Store
// access does not refresh LastSeen; eviction is the sweeper's job
func (m *MemoryStore) Get(_ context.Context, sessionID string) (Context, bool, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return Context{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.ctx), true, nil
}

// Append implements Store
func (m *MemoryStore) Append(_ context.Context, sessionID string, t Turn) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &session{ctx: Context{SessionID: sessionID}}
		m.sessions[sessionID] = s
	}
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.AskedAt.IsZero() {
		t.AskedAt = m.clock.Now()
	}
	s.ctx.History = append(s.ctx.History, t)
	if n := len(s.ctx.History); n > MaxHistory {
		s.ctx.History = append([]Turn(nil), s.ctx.History[n-MaxHistory:]...)
	}
	s.ctx.LastSeen = m.clock.Now()
	return nil
}

// Delete implements Store
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// Sweep implements Store
func (m *MemoryStore) Sweep(_ context.Context, idleFor time.Duration) (int, error) {
	cutoff := m.clock.Now().Add(-idleFor)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.ctx.LastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

// Len reports how many sessions are live, for metrics gauges
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func snapshot(c Context) Context {
	out := c
	out.History = append([]Turn(nil), c.History...)
	return out
}
