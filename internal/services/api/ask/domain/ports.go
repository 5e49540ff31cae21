package domain

import "context"

// ServicePort is the ask module's inbound operation
type ServicePort interface {
	// Ask answers one free-text question, threading conversational
	// state through the session identified by in.SessionID
	Ask(ctx context.Context, in AskInput) (AskOutput, error)
}
