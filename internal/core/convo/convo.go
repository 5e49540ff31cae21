// Package convo keeps per-session conversational state and merges a
// new question analysis with the immediately preceding turn when the
// question refers back to it
package convo

import (
	"context"
	"time"

	"touchline/internal/core/question"
)

// MaxHistory bounds how many turns a session retains
const MaxHistory = 3

// IdleEviction is how long a session may sit untouched before the
// sweeper removes it
const IdleEviction = time.Hour

// Turn is one question/answer exchange in a session
type Turn struct {
	Question string            `json:"question"`
	Analysis question.Analysis `json:"analysis"`
	Answer   string            `json:"answer,omitempty"`
	AskedAt  time.Time         `json:"askedAt"`
}

// Context is the bounded history for one session; History is ordered
// oldest first and never exceeds MaxHistory
type Context struct {
	SessionID string    `json:"sessionId"`
	History   []Turn    `json:"history"`
	LastSeen  time.Time `json:"lastSeen"`
}

// Last returns the most recent turn, if any
func (c Context) Last() (Turn, bool) {
	if len(c.History) == 0 {
		return Turn{}, false
	}
	return c.History[len(c.History)-1], true
}

// Store is the injectable session context store; the in-memory
// implementation below is the default, a distributed cache can be
// swapped in without touching callers
type Store interface {
	// Get returns the context for sessionID, reporting whether it exists
	Get(ctx context.Context, sessionID string) (Context, bool, error)
	// Append records a turn, serializing concurrent appends to the same
	// session and truncating history to MaxHistory
	Append(ctx context.Context, sessionID string, t Turn) error
	// Delete removes a session outright
	Delete(ctx context.Context, sessionID string) error
	// Sweep removes sessions idle for longer than idleFor and returns
	// how many were evicted
	Sweep(ctx context.Context, idleFor time.Duration) (int, error)
}
