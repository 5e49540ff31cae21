// Package answer renders typed query results into natural language
// using a per-metric verb table and a per-category template catalog;
// adding a metric or phrasing variant extends the catalogs, not the
// call sites
package answer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"touchline/internal/core/metric"
	perr "touchline/internal/platform/errors"
	pstrings "touchline/internal/platform/strings"
)

// Category selects which template family renders a stat
type Category string

const (
	// Basic is a plain entity + value statement
	Basic Category = "basic"
	// TeamSpecific qualifies the statement with the team it was for
	TeamSpecific Category = "team"
	// Comparison states a superlative result
	Comparison Category = "comparison"
)

// templates use {slot} placeholders; empty slots collapse cleanly
// because rendering squeezes the leftover whitespace
var templates = map[Category]string{
	Basic:        "{entity} has {verb} {value} {metric}{time}.",
	TeamSpecific: "{entity} has {verb} {value} {metric} for the {team}{time}.",
	Comparison:   "{entity} has {verb} the {direction} {metric} of anyone, with {value}{time}.",
}

// directionWords renders a comparison direction inside a sentence
var directionWords = map[string]string{
	"most":  "most",
	"least": "fewest",
}

// Stat is one renderable statistic
type Stat struct {
	Entity     string
	MetricCode string
	Value      float64
	Category   Category
	Team       string // TeamSpecific only
	Direction  string // Comparison only: most | least
	TimePhrase string // optional, e.g. "in 2019/20"
}

// Format renders s through the verb and template catalogs
func Format(s Stat) (string, error) {
	d, err := metric.Find(s.MetricCode)
	if err != nil {
		return "", err
	}
	tmpl, ok := templates[s.Category]
	if !ok {
		return "", perr.InvalidArgf("unknown answer category %q", s.Category)
	}

	timePhrase := ""
	if s.TimePhrase != "" {
		timePhrase = " " + s.TimePhrase
	}
	r := strings.NewReplacer(
		"{entity}", s.Entity,
		"{verb}", d.Verb,
		"{value}", Number(s.Value),
		"{metric}", metricNoun(d, s.Value),
		"{team}", s.Team,
		"{direction}", directionWords[s.Direction],
		"{time}", timePhrase,
	)
	return pstrings.CollapseSpaces(r.Replace(tmpl)), nil
}

// metricNoun picks singular or plural display form
func metricNoun(d metric.Descriptor, v float64) string {
	if v == 1 {
		return d.Singular
	}
	return d.Display
}

// Number renders a value without trailing noise: whole numbers bare,
// fractional ones to two decimals (per-appearance rates)
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Ordinal renders 1 -> "1st", 2 -> "2nd", 11 -> "11th"
func Ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		// teens take th
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// Possessive appends the right apostrophe form to a name
func Possessive(name string) string {
	if strings.HasSuffix(strings.ToLower(name), "s") {
		return name + "'"
	}
	return name + "'s"
}

// Finish renders a league finish, e.g.
// "The 2s' highest league finish is 2nd, in the 2014/15 season."
func Finish(team, qualifier string, position int, season string) string {
	s := fmt.Sprintf("The %s %s league finish is %s", Possessive(team), qualifier, Ordinal(position))
	if season != "" {
		s += fmt.Sprintf(", in the %s season", season)
	}
	return s + "."
}

// Count renders "n noun" with data-driven pluralization
func Count(n float64, singular, plural string) string {
	if n == 1 {
		return Number(n) + " " + singular
	}
	return Number(n) + " " + plural
}

// RankedEntry is one row of a leaderboard answer
type RankedEntry struct {
	Name  string
	Value float64
}

// Ranked renders a leaderboard, leader first:
// "Luke Bangs leads with 42 goals, ahead of Steve Archer (38) and Tom Day (31)."
func Ranked(code string, entries []RankedEntry) (string, error) {
	d, err := metric.Find(code)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", perr.InvalidArgf("empty leaderboard")
	}
	lead := entries[0]
	s := fmt.Sprintf("%s leads with %s", lead.Name, Count(lead.Value, d.Singular, d.Display))
	if len(entries) > 1 {
		var rest []string
		for _, e := range entries[1:] {
			rest = append(rest, fmt.Sprintf("%s (%s)", e.Name, Number(e.Value)))
		}
		s += ", ahead of " + joinAnd(rest)
	}
	return s + ".", nil
}

// joinAnd joins with commas and a final "and"
func joinAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

// TimePhrase renders a human time qualifier for a season list
func TimePhrase(seasons []string) string {
	switch len(seasons) {
	case 0:
		return ""
	case 1:
		return "in the " + seasons[0] + " season"
	default:
		return "across the " + joinAnd(seasons) + " seasons"
	}
}
