// Package domain defines the ask module wire types and ports
package domain

// AskInput is the inbound question payload
// length caps are boundary validation; the core never sees an
// oversized question
type AskInput struct {
	Question  string `json:"question" validate:"required,max=1000"`
	Context   string `json:"context,omitempty" validate:"omitempty,max=200"`
	SessionID string `json:"sessionId,omitempty" validate:"omitempty,max=128"`
}

// Source names a graph region an answer was derived from
type Source struct {
	Dataset string   `json:"dataset"`
	Kinds   []string `json:"kinds"`
}

// Visualization is an optional chart-ready series for ranked answers
type Visualization struct {
	Kind   string    `json:"kind"` // bar | line
	Title  string    `json:"title,omitempty"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Debug carries internals attached only outside production
type Debug struct {
	Query string   `json:"query,omitempty"`
	Steps []string `json:"steps,omitempty"`
}

// AskOutput is the answer payload; failures are conversational answers
// in the same shape, never raw errors
type AskOutput struct {
	Answer        string         `json:"answer"`
	Suggestions   []string       `json:"suggestions,omitempty"`
	Sources       []Source       `json:"sources"`
	Visualization *Visualization `json:"visualization,omitempty"`
	SessionID     string         `json:"sessionId"`
	Debug         *Debug         `json:"debug,omitempty"`
}
