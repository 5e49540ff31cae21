// Package question analyzes free-text questions into a structured
// form: entities, metrics, time range, comparison direction, and a
// question type the dispatcher routes on
//
// The pipeline is deterministic and heuristic; the same input against
// the same catalog snapshot always yields the same analysis
package question

import (
	"touchline/internal/core/filterspec"
)

// EntityType partitions the catalogs the analyzer scans against
type EntityType string

const (
	// EntityPlayer is an individual player name
	EntityPlayer EntityType = "player"
	// EntityTeam is one of the club's own sides
	EntityTeam EntityType = "team"
	// EntityOpposition is an opposing club
	EntityOpposition EntityType = "opposition"
	// EntityLeague is a league or division name
	EntityLeague EntityType = "league"
)

// Entity is a resolved mention found in the question text
type Entity struct {
	Name string     `json:"name"` // canonical catalog form
	Type EntityType `json:"type"`
}

// Direction is the comparison direction of a superlative question
type Direction string

const (
	// DirectionNone means the question is not a superlative
	DirectionNone Direction = ""
	// DirectionMost asks for the extremal high value
	DirectionMost Direction = "most"
	// DirectionLeast asks for the extremal low value
	DirectionLeast Direction = "least"
)

// Type is the coarse routing category of a question
type Type string

const (
	// TypePlayer is a question about one player's statistics
	TypePlayer Type = "player"
	// TypeTeam is a question about one of the club's sides
	TypeTeam Type = "team"
	// TypeClub is a question spanning the whole club
	TypeClub Type = "club"
	// TypeLeague is a question about league tables and finishes
	TypeLeague Type = "league"
	// TypeRelationship is a question relating two named entities
	TypeRelationship Type = "relationship"
	// TypeAmbiguous means the analyzer could not route the question
	TypeAmbiguous Type = "ambiguous"
)

// Analysis is the structured reading of one question
type Analysis struct {
	Question      string               `json:"question"` // normalized text
	Entities      []Entity             `json:"entities"`
	Metrics       []string             `json:"metrics"` // canonical codes
	TimeRange     filterspec.TimeRange `json:"timeRange"`
	Direction     Direction            `json:"direction,omitempty"`
	Type          Type                 `json:"type"`
	Clarification string               `json:"clarification,omitempty"`
}

// EntitiesOf returns the entities of one type in discovery order
func (a Analysis) EntitiesOf(t EntityType) []Entity {
	var out []Entity
	for _, e := range a.Entities {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// FirstEntity returns the first entity of type t, if any
func (a Analysis) FirstEntity(t EntityType) (Entity, bool) {
	for _, e := range a.Entities {
		if e.Type == t {
			return e, true
		}
	}
	return Entity{}, false
}

// HasMetric reports whether code was recognized in the question
func (a Analysis) HasMetric(code string) bool {
	for _, m := range a.Metrics {
		if m == code {
			return true
		}
	}
	return false
}

// Catalogs is the read surface the analyzer scans entity mentions
// against; implementations return canonical display names
type Catalogs interface {
	Entries(t EntityType) []string
}
