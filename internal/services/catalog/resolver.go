package catalog

import (
	"sort"

	"touchline/internal/core/fuzzy"
	"touchline/internal/core/phrase"
	"touchline/internal/core/question"
)

// suggestThreshold is the minimum similarity for a candidate to be
// offered at all; below it for every entry means "not found"
const suggestThreshold = 0.6

// MaxSuggestions bounds how many ranked candidates a resolution carries
const MaxSuggestions = 3

// Resolution is the outcome of resolving one raw name
// Matched false with suggestions means "did you mean"; Matched false
// with no suggestions means the name is nothing we know about
type Resolution struct {
	Matched       bool     `json:"matched"`
	CanonicalName string   `json:"canonicalName,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// Resolver matches raw names against the catalogs with a swappable
// similarity strategy
type Resolver struct {
	cats *Service
	sim  fuzzy.Strategy
}

// NewResolver builds a Resolver; a nil strategy uses the default
func NewResolver(cats *Service, sim fuzzy.Strategy) *Resolver {
	if sim == nil {
		sim = fuzzy.Default()
	}
	return &Resolver{cats: cats, sim: sim}
}

// Resolve matches name against the t partition: exact case-insensitive
// first, then similarity-ranked suggestions above the threshold
func (r *Resolver) Resolve(name string, t question.EntityType) Resolution {
	norm := phrase.Normalize(name)
	if norm == "" {
		return Resolution{}
	}

	entries := r.cats.Entries(t)
	for _, e := range entries {
		if phrase.Normalize(e) == norm {
			return Resolution{Matched: true, CanonicalName: e}
		}
	}

	type scored struct {
		name  string
		score float64
	}
	var cands []scored
	for _, e := range entries {
		s := r.sim.Similarity(norm, phrase.Normalize(e))
		if s >= suggestThreshold {
			cands = append(cands, scored{name: e, score: s})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].name < cands[j].name
	})

	out := Resolution{}
	for i := 0; i < len(cands) && i < MaxSuggestions; i++ {
		out.Suggestions = append(out.Suggestions, cands[i].name)
	}
	return out
}
