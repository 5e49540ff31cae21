// Package metric defines the canonical statistical metrics the engine
// can answer about, their answer verbs, and the alias table used to
// recognize them in free text
package metric

import (
	"sort"

	perr "touchline/internal/platform/errors"

	"touchline/internal/core/phrase"
)

// Scope narrows which vocabulary a metric belongs to when suggesting
// alternatives for an unrecognized metric
type Scope string

const (
	// ScopePlayer marks metrics asked about an individual player
	ScopePlayer Scope = "player"
	// ScopeTeam marks metrics asked about a team or the whole club
	ScopeTeam Scope = "team"
	// ScopeBoth marks metrics valid in either context
	ScopeBoth Scope = "both"
)

// Descriptor describes one canonical metric
// Verb is the past participle used in rendered answers; an empty verb
// means the template drops the verb slot entirely
type Descriptor struct {
	Code          string
	Display       string
	Singular      string
	Verb          string
	Scope         Scope
	PerAppearance bool
}

// catalog is the single source of truth; a code resolves to exactly
// one Descriptor or the lookup fails with an invalid metric error
var catalog = []Descriptor{
	{Code: "goals", Display: "goals", Singular: "goal", Verb: "scored", Scope: ScopeBoth},
	{Code: "assists", Display: "assists", Singular: "assist", Verb: "provided", Scope: ScopePlayer},
	{Code: "appearances", Display: "appearances", Singular: "appearance", Verb: "made", Scope: ScopePlayer},
	{Code: "cleanSheets", Display: "clean sheets", Singular: "clean sheet", Verb: "kept", Scope: ScopeBoth},
	{Code: "yellowCards", Display: "yellow cards", Singular: "yellow card", Verb: "received", Scope: ScopePlayer},
	{Code: "redCards", Display: "red cards", Singular: "red card", Verb: "received", Scope: ScopePlayer},
	{Code: "motm", Display: "man of the match awards", Singular: "man of the match award", Verb: "won", Scope: ScopePlayer},
	{
		Code: "goalsPerGame", Display: "goals per game", Singular: "goals per game",
		Verb: "averaged", Scope: ScopePlayer, PerAppearance: true,
	},
	{Code: "wins", Display: "wins", Singular: "win", Verb: "recorded", Scope: ScopeTeam},
	{Code: "draws", Display: "draws", Singular: "draw", Verb: "recorded", Scope: ScopeTeam},
	{Code: "losses", Display: "losses", Singular: "loss", Verb: "suffered", Scope: ScopeTeam},
	{Code: "goalsConceded", Display: "goals conceded", Singular: "goal conceded", Verb: "conceded", Scope: ScopeTeam},
	// points reads naturally without a verb ("has 52 points")
	{Code: "points", Display: "points", Singular: "point", Verb: "", Scope: ScopeTeam},
}

// aliases maps normalized surface phrases to canonical codes
// multi word phrases are matched longest first so "goals per game"
// wins over the bare "goals" inside it
var aliases = map[string]string{
	"goals":   "goals",
	"goal":    "goals",
	"scored":  "goals",
	"scoring": "goals",

	"assists":  "assists",
	"assist":   "assists",
	"assisted": "assists",
	"set up":   "assists",

	"appearances":  "appearances",
	"appearance":   "appearances",
	"apps":         "appearances",
	"caps":         "appearances",
	"games played": "appearances",

	"clean sheets": "cleanSheets",
	"clean sheet":  "cleanSheets",
	"shutouts":     "cleanSheets",
	"shutout":      "cleanSheets",

	"yellow cards": "yellowCards",
	"yellow card":  "yellowCards",
	"yellows":      "yellowCards",
	"bookings":     "yellowCards",
	"booked":       "yellowCards",

	"red cards":  "redCards",
	"red card":   "redCards",
	"reds":       "redCards",
	"sent off":   "redCards",
	"dismissals": "redCards",

	"man of the match":    "motm",
	"motm":                "motm",
	"player of the match": "motm",

	"goals per game":       "goalsPerGame",
	"goals per appearance": "goalsPerGame",
	"goals a game":         "goalsPerGame",
	"goal ratio":           "goalsPerGame",

	"wins":      "wins",
	"win":       "wins",
	"won":       "wins",
	"victories": "wins",

	"draws": "draws",
	"draw":  "draws",
	"drawn": "draws",

	"losses":  "losses",
	"loss":    "losses",
	"lost":    "losses",
	"defeats": "losses",

	"goals conceded": "goalsConceded",
	"goals against":  "goalsConceded",
	"conceded":       "goalsConceded",
	"concede":        "goalsConceded",

	"points": "points",
	"pts":    "points",
}

// byCode is derived from catalog at init
var byCode = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(catalog))
	for _, d := range catalog {
		m[d.Code] = d
	}
	return m
}()

// orderedAliases is the alias list sorted longest first then
// lexicographic so scans are deterministic
var orderedAliases = func() []string {
	out := make([]string, 0, len(aliases))
	for a := range aliases {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}()

// Find resolves a canonical code to its Descriptor
func Find(code string) (Descriptor, error) {
	if d, ok := byCode[code]; ok {
		return d, nil
	}
	return Descriptor{}, perr.InvalidMetricf("unknown metric %q", code)
}

// MustFind is Find for codes the caller produced itself
func MustFind(code string) Descriptor {
	d, err := Find(code)
	if err != nil {
		panic(err)
	}
	return d
}

// FromText scans normalized question text for metric aliases, longest
// match first, and returns the canonical codes ordered by where they
// appear in the text
// matched spans are blanked so "goals per game" never also yields "goals"
func FromText(text string) []string {
	type hit struct {
		pos  int
		code string
	}
	var hits []hit
	seen := map[string]int{} // code -> index into hits
	for _, alias := range orderedAliases {
		if !phrase.ContainsWord(text, alias) {
			continue
		}
		pos := phrase.WordIndex(text, alias)
		text = phrase.BlankSpan(text, alias)
		code := aliases[alias]
		if i, ok := seen[code]; ok {
			if pos < hits[i].pos {
				hits[i].pos = pos
			}
			continue
		}
		seen[code] = len(hits)
		hits = append(hits, hit{pos: pos, code: code})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	var codes []string
	for _, h := range hits {
		codes = append(codes, h.code)
	}
	return codes
}

// subsumes marks codes whose phrasing can also match a broader alias
// in the same sentence ("how many goals has the side conceded" matches
// both goals and goalsConceded); Primary drops the broader code
var subsumes = map[string][]string{
	"goalsConceded": {"goals"},
	"goalsPerGame":  {"goals"},
}

// Primary picks the metric a handler should answer with when a scan
// produced several codes: the first code not subsumed by a later one
func Primary(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	dropped := map[string]bool{}
	for _, c := range codes {
		for _, broad := range subsumes[c] {
			dropped[broad] = true
		}
	}
	for _, c := range codes {
		if !dropped[c] {
			return c
		}
	}
	return codes[0]
}

// Vocabulary lists display names suitable as suggestions for the scope
func Vocabulary(s Scope) []string {
	var out []string
	for _, d := range catalog {
		if d.Scope == s || d.Scope == ScopeBoth || s == ScopeBoth {
			out = append(out, d.Display)
		}
	}
	return out
}
