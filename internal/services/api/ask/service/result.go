// Package service contains the ask orchestrator, the rule-table
// dispatcher, the handler family, and the failure/suggestion engine
package service

import (
	"touchline/internal/services/api/ask/domain"
)

// Kind discriminates handler results; every handler returns a Result,
// never a raw error, so nothing thrown below the dispatcher reaches
// the transport
type Kind string

const (
	// KindStat is a single formatted statistic
	KindStat Kind = "stat"
	// KindRanked is a leaderboard answer
	KindRanked Kind = "ranked"
	// KindFinish is a league finish answer
	KindFinish Kind = "finish"
	// KindRelationship is a two-entity answer
	KindRelationship Kind = "relationship"
	// KindClarification asks the user to restate the question
	KindClarification Kind = "clarification"
	// KindError is a conversational failure answer
	KindError Kind = "error"
)

// failCategory names the failure families of the suggestion engine
type failCategory string

const (
	failEntityNotFound failCategory = "entity_not_found"
	failInvalidMetric  failCategory = "invalid_metric"
	failQueryFailed    failCategory = "query_failed"
	failAmbiguous      failCategory = "ambiguous_query"
)

// Result is the uniform outcome shape shared by all handlers
type Result struct {
	Kind          Kind
	Answer        string
	Suggestions   []string
	Visualization *domain.Visualization

	// Category is set on failure results for logs and metrics
	Category failCategory
	// Err is the underlying typed error, kept for logging only and
	// never rendered to the user
	Err error

	// Query and Steps feed the debug payload outside production
	Query string
	Steps []string
}

// Outcome labels the result for the questions_total metric
func (r Result) Outcome() string {
	switch r.Kind {
	case KindClarification:
		return "clarification"
	case KindError:
		return "error"
	default:
		return "answered"
	}
}
