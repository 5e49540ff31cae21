package question

import (
	"fmt"
	"regexp"
	"sort"

	"touchline/internal/core/filterspec"
	"touchline/internal/core/metric"
	"touchline/internal/core/phrase"
)

// entityCap bounds how many entity mentions a question may carry
// before the analyzer asks the user to narrow it instead of guessing
const entityCap = 3

// metricCap mirrors entityCap for recognized metrics
const metricCap = 3

// Analyzer extracts a structured Analysis from free text
type Analyzer struct {
	cats Catalogs
}

// NewAnalyzer builds an Analyzer over the given catalogs
func NewAnalyzer(cats Catalogs) *Analyzer {
	if cats == nil {
		panic("question: nil catalogs")
	}
	return &Analyzer{cats: cats}
}

// scanOrder fixes the tie-break when the same surface form exists in
// more than one catalog: the more specific catalogs win
var scanOrder = []EntityType{EntityTeam, EntityOpposition, EntityLeague, EntityPlayer}

// Season and date patterns, anchored to token boundaries
var (
	reSeasonSlash = regexp.MustCompile(`(^| )(\d{4})/(\d{2})( |$)`)
	reSeasonSpan  = regexp.MustCompile(`(^| )(\d{4})-(\d{4})( |$)`)
	reBefore      = regexp.MustCompile(`(^| )before (\d{4})( |$)`)
	reAfter       = regexp.MustCompile(`(^| )after (\d{4})( |$)`)
	reBetween     = regexp.MustCompile(`(^| )between (\d{4}) and (\d{4})( |$)`)
)

var (
	mostWords  = []string{"most", "highest", "best", "top"}
	leastWords = []string{"fewest", "least", "lowest", "worst", "bottom"}

	relationshipWords = []string{"together", "alongside", "both", "with", "pair", "partnership", "combined", "between them"}
	leagueWords       = []string{"league", "table", "finish", "finished", "position", "standings", "division"}
	clubWords         = []string{"club", "overall", "all teams", "across the club", "whole club", "any team"}
)

// Analyze runs the full pipeline over raw question text
func (a *Analyzer) Analyze(raw string) Analysis {
	text := phrase.Normalize(raw)
	out := Analysis{Question: text, TimeRange: filterspec.AllTime()}

	// entity scan first so entity names never double as metric words
	entities, remainder := a.scanEntities(text)
	out.Entities = entities
	out.Metrics = metric.FromText(remainder)
	out.TimeRange = extractTimeRange(text)
	out.Direction = extractDirection(text)

	return Reclassify(out)
}

// Reclassify recomputes Type and Clarification from the current
// entities and metrics; context merging calls this again after
// back-filling gaps from a previous turn
func Reclassify(a Analysis) Analysis {
	switch {
	case len(a.Entities) > entityCap:
		a.Type = TypeAmbiguous
		a.Clarification = NarrowClarification("names", len(a.Entities))
		return a
	case len(a.Metrics) > metricCap:
		a.Type = TypeAmbiguous
		a.Clarification = NarrowClarification("statistics", len(a.Metrics))
		return a
	case len(a.Entities) == 0 && len(a.Metrics) == 0:
		a.Type = TypeAmbiguous
		a.Clarification = "I couldn't work out who or what statistic you're asking about. " +
			"Try naming a player or team and a statistic, like \"How many goals has Luke Bangs scored?\""
		return a
	}

	a.Type = classify(a)
	a.Clarification = ""
	return a
}

// scanEntities walks catalog names longest first and claims boundary
// matches, blanking claimed spans so shorter names cannot re-match
// inside them; capped mentions are still returned so classification
// can report the overflow
func (a *Analyzer) scanEntities(text string) ([]Entity, string) {
	type candidate struct {
		norm      string
		canonical string
		typ       EntityType
		order     int // scanOrder index, for tie-breaks
	}
	var cands []candidate
	for oi, t := range scanOrder {
		for _, name := range a.cats.Entries(t) {
			n := phrase.Normalize(name)
			if n == "" {
				continue
			}
			cands = append(cands, candidate{norm: n, canonical: name, typ: t, order: oi})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if len(cands[i].norm) != len(cands[j].norm) {
			return len(cands[i].norm) > len(cands[j].norm)
		}
		if cands[i].norm != cands[j].norm {
			return cands[i].norm < cands[j].norm
		}
		return cands[i].order < cands[j].order
	})

	type hit struct {
		pos int
		ent Entity
	}
	var hits []hit
	for _, c := range cands {
		pos := phrase.WordIndex(text, c.norm)
		if pos < 0 {
			continue
		}
		text = phrase.BlankSpan(text, c.norm)
		hits = append(hits, hit{pos: pos, ent: Entity{Name: c.canonical, Type: c.typ}})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var out []Entity
	for _, h := range hits {
		out = append(out, h.ent)
	}
	return out, text
}

func extractTimeRange(text string) filterspec.TimeRange {
	if m := reBetween.FindStringSubmatch(text); m != nil {
		return filterspec.TimeRange{
			Type:  filterspec.TimeBetween,
			Start: m[2] + "-01-01",
			End:   m[3] + "-12-31",
		}
	}
	if m := reBefore.FindStringSubmatch(text); m != nil {
		return filterspec.TimeRange{Type: filterspec.TimeBeforeDate, Date: m[2] + "-01-01"}
	}
	if m := reAfter.FindStringSubmatch(text); m != nil {
		return filterspec.TimeRange{Type: filterspec.TimeAfterDate, Date: m[2] + "-12-31"}
	}
	if seasons := SeasonTokens(text); len(seasons) > 0 {
		return filterspec.TimeRange{Type: filterspec.TimeSeason, Seasons: seasons}
	}
	return filterspec.AllTime()
}

// SeasonTokens extracts season identifiers in canonical "YYYY/YY" form
// from normalized text; "2019-2020" folds to "2019/20"
func SeasonTokens(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range reSeasonSlash.FindAllStringSubmatch(text, -1) {
		s := m[2] + "/" + m[3]
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, m := range reSeasonSpan.FindAllStringSubmatch(text, -1) {
		if len(m[3]) < 4 {
			continue
		}
		s := m[2] + "/" + m[3][2:]
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// HasSeasonToken reports whether normalized text carries a season-like
// token, used by context merging to decide time range overrides
func HasSeasonToken(text string) bool {
	return reSeasonSlash.MatchString(text) || reSeasonSpan.MatchString(text)
}

func extractDirection(text string) Direction {
	// least wins ties like "lowest of the most" by being rarer; check it first
	if phrase.ContainsAny(text, leastWords...) {
		return DirectionLeast
	}
	if phrase.ContainsAny(text, mostWords...) {
		return DirectionMost
	}
	return DirectionNone
}

// classify picks the coarse question type by fixed priority:
// relationship cues, then league cues, then club cues, then teams,
// defaulting to player
func classify(a Analysis) Type {
	players := a.EntitiesOf(EntityPlayer)
	if len(players) >= 2 && phrase.ContainsAny(a.Question, relationshipWords...) {
		return TypeRelationship
	}
	if phrase.ContainsAny(a.Question, leagueWords...) {
		return TypeLeague
	}
	if phrase.ContainsAny(a.Question, clubWords...) {
		return TypeClub
	}
	if len(players) == 0 {
		if _, ok := a.FirstEntity(EntityTeam); ok {
			return TypeTeam
		}
	}
	return TypePlayer
}

// NarrowClarification builds the over-cap message for n mentions
func NarrowClarification(kind string, n int) string {
	return fmt.Sprintf("I found %d %s in that question. Please narrow it down to one or two.", n, kind)
}
