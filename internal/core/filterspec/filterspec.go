// Package filterspec compiles a structured filter object into ordered,
// alias-agnostic Cypher predicate fragments with named parameter
// bindings, never inline literals
//
// Fragment order is fixed (time range, teams, location, opposition,
// competition, result, position) so a compiled list stays index-stable
// when replayed under a second alias within one compound query
package filterspec

import (
	"fmt"
	"strings"

	perr "touchline/internal/platform/errors"
)

// Canonical aliases fragments are emitted against; ReplayAs retargets them
const (
	// AliasFixture is the match clause alias for fixture nodes
	AliasFixture = "f"
	// AliasDetail is the match clause alias for per-player match detail nodes
	AliasDetail = "d"
)

// TimeRangeType discriminates the TimeRange variant
type TimeRangeType string

const (
	// TimeAllTime places no time restriction
	TimeAllTime TimeRangeType = "allTime"
	// TimeSeason restricts to one or more named seasons
	TimeSeason TimeRangeType = "season"
	// TimeBeforeDate restricts to fixtures strictly before a date
	TimeBeforeDate TimeRangeType = "beforeDate"
	// TimeAfterDate restricts to fixtures strictly after a date
	TimeAfterDate TimeRangeType = "afterDate"
	// TimeBetween restricts to fixtures between two dates inclusive
	TimeBetween TimeRangeType = "between"
)

// TimeRange is a tagged variant; only the fields for its Type are read
type TimeRange struct {
	Type    TimeRangeType `json:"type"`
	Seasons []string      `json:"seasons,omitempty"`
	Date    string        `json:"date,omitempty"`
	Start   string        `json:"start,omitempty"`
	End     string        `json:"end,omitempty"`
}

// AllTime is the zero restriction time range
func AllTime() TimeRange { return TimeRange{Type: TimeAllTime} }

// IsAllTime reports whether the range places no restriction; the zero
// Type counts as allTime
func (t TimeRange) IsAllTime() bool { return t.Type == TimeAllTime || t.Type == "" }

// Opposition narrows fixtures by opponent; All true means no restriction
type Opposition struct {
	All        bool   `json:"all"`
	SearchTerm string `json:"searchTerm,omitempty"`
}

// Competition narrows fixtures by competition type and/or name
type Competition struct {
	Types      []string `json:"types,omitempty"`
	SearchTerm string   `json:"searchTerm,omitempty"`
}

// Spec is the full structured filter; every field defaults to "no
// restriction" so the zero value compiles to zero fragments
type Spec struct {
	TimeRange   TimeRange   `json:"timeRange"`
	Teams       []string    `json:"teams,omitempty"`
	Location    []string    `json:"location,omitempty"` // Home / Away
	Opposition  Opposition  `json:"opposition"`
	Competition Competition `json:"competition"`
	Result      []string    `json:"result,omitempty"` // Win / Draw / Loss
	Position    []string    `json:"position,omitempty"`
}

// Params is the named binding bag mutated by Compile
type Params map[string]any

// Compile translates spec into predicate fragments and binds their
// values into params
// The zero time range type is treated as allTime so a literal
// Spec{} is safe to compile
func Compile(spec Spec, params Params) ([]string, error) {
	if params == nil {
		return nil, perr.InvalidArgf("nil params bag")
	}
	var frags []string

	tf, err := compileTimeRange(spec.TimeRange, params)
	if err != nil {
		return nil, err
	}
	frags = append(frags, tf...)

	if len(spec.Teams) > 0 {
		params["teams"] = spec.Teams
		frags = append(frags, AliasFixture+".team IN $teams")
	}
	if len(spec.Location) > 0 {
		params["locations"] = spec.Location
		frags = append(frags, AliasFixture+".location IN $locations")
	}
	if !spec.Opposition.All && spec.Opposition.SearchTerm != "" {
		params["opposition"] = spec.Opposition.SearchTerm
		frags = append(frags, "toLower("+AliasFixture+".opposition) CONTAINS toLower($opposition)")
	}
	if len(spec.Competition.Types) > 0 {
		params["competitionTypes"] = spec.Competition.Types
		frags = append(frags, AliasFixture+".competitionType IN $competitionTypes")
	}
	if spec.Competition.SearchTerm != "" {
		params["competition"] = spec.Competition.SearchTerm
		frags = append(frags, "toLower("+AliasFixture+".competition) CONTAINS toLower($competition)")
	}
	if len(spec.Result) > 0 {
		params["results"] = spec.Result
		frags = append(frags, AliasFixture+".result IN $results")
	}
	if len(spec.Position) > 0 {
		params["positions"] = spec.Position
		frags = append(frags, AliasDetail+".position IN $positions")
	}
	return frags, nil
}

func compileTimeRange(tr TimeRange, params Params) ([]string, error) {
	switch tr.Type {
	case TimeAllTime, "":
		return nil, nil
	case TimeSeason:
		// an empty season list is "no restriction", not a contradiction
		if len(tr.Seasons) == 0 {
			return nil, nil
		}
		params["seasons"] = tr.Seasons
		return []string{AliasFixture + ".season IN $seasons"}, nil
	case TimeBeforeDate:
		params["beforeDate"] = tr.Date
		return []string{AliasFixture + ".date < date($beforeDate)"}, nil
	case TimeAfterDate:
		params["afterDate"] = tr.Date
		return []string{AliasFixture + ".date > date($afterDate)"}, nil
	case TimeBetween:
		params["fromDate"] = tr.Start
		params["toDate"] = tr.End
		return []string{
			AliasFixture + ".date >= date($fromDate)",
			AliasFixture + ".date <= date($toDate)",
		}, nil
	default:
		return nil, perr.InvalidFilterf("unrecognized time range type %q", tr.Type)
	}
}

// ReplayAs textually retargets compiled fragments from one alias onto
// another so the same predicate set (and its bindings) can be reused
// against a second match clause in the same query
// Fragments are engine-generated text, so a boundary-checked property
// access rewrite is sufficient
func ReplayAs(frags []string, from, to string) []string {
	if from == to {
		out := make([]string, len(frags))
		copy(out, frags)
		return out
	}
	needle := from + "."
	repl := to + "."
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		out = append(out, replaceAccess(f, needle, repl))
	}
	return out
}

// replaceAccess replaces needle only where it starts a property access,
// i.e. not preceded by an identifier rune or '$'
func replaceAccess(s, needle, repl string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], needle) && !identBefore(s, i) {
			b.WriteString(repl)
			i += len(needle)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func identBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	c := s[i-1]
	return c == '$' || c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// And joins fragments into a single conjunction, empty when no
// restrictions apply
func And(frags []string) string { return strings.Join(frags, " AND ") }

// Where renders a WHERE clause or nothing when there are no fragments
func Where(frags []string) string {
	if len(frags) == 0 {
		return ""
	}
	return fmt.Sprintf("WHERE %s", And(frags))
}
