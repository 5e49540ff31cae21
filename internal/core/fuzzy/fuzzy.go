// Package fuzzy wraps string similarity behind a small strategy
// interface so the resolver's scoring function can be swapped without
// touching callers
package fuzzy

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Strategy scores how alike two strings are on [0,1]
// implementations must be safe for concurrent use
type Strategy interface {
	// Similarity returns 1 for identical strings and approaches 0 as
	// they diverge; inputs are expected to be normalized already
	Similarity(a, b string) float64
	// Name identifies the strategy for logs and debug payloads
	Name() string
}

type jaroWinkler struct{ m *metrics.JaroWinkler }

// NewJaroWinkler builds the default strategy
// Jaro-Winkler favors shared prefixes, which suits single-character
// typos in names
func NewJaroWinkler() Strategy {
	return jaroWinkler{m: metrics.NewJaroWinkler()}
}

func (s jaroWinkler) Similarity(a, b string) float64 { return strutil.Similarity(a, b, s.m) }
func (s jaroWinkler) Name() string                   { return "jaro-winkler" }

type sorensenDice struct{ m *metrics.SorensenDice }

// NewSorensenDice builds a bigram overlap strategy, more forgiving of
// transposed words in multi-word names
func NewSorensenDice() Strategy {
	return sorensenDice{m: metrics.NewSorensenDice()}
}

func (s sorensenDice) Similarity(a, b string) float64 { return strutil.Similarity(a, b, s.m) }
func (s sorensenDice) Name() string                   { return "sorensen-dice" }

// Default is the strategy used when callers do not choose one
func Default() Strategy { return NewJaroWinkler() }
