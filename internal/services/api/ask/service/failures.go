package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"touchline/internal/core/metric"
	"touchline/internal/core/phrase"
	"touchline/internal/core/question"
	perr "touchline/internal/platform/errors"
)

// maxMetricSuggestions caps how many statistics a failure answer offers
const maxMetricSuggestions = 5

// missingMetric answers a question with a subject but no recognizable
// statistic, offering the vocabulary valid for that subject's scope
func (s *Svc) missingMetric(scope metric.Scope) Result {
	sugg := metric.Vocabulary(scope)
	if len(sugg) > maxMetricSuggestions {
		sugg = sugg[:maxMetricSuggestions]
	}
	return Result{
		Kind:        KindClarification,
		Category:    failAmbiguous,
		Answer:      "I can see who you're asking about, but not which statistic. Try one of: " + strings.Join(sugg, ", ") + ".",
		Suggestions: sugg,
	}
}

// missingEntity answers a question whose subject could not be found and
// carried nothing close enough to suggest
func (s *Svc) missingEntity(t question.EntityType) Result {
	msg := "I couldn't work out who you're asking about. Try the player's full name."
	if t == question.EntityTeam {
		msg = "I couldn't work out which side you mean. Try a team name like the 1s or 2s."
	}
	return Result{Kind: KindClarification, Category: failAmbiguous, Answer: msg}
}

// failRepo translates a repository error into a conversational result
func (s *Svc) failRepo(err error, scope metric.Scope) Result {
	if perr.IsCode(err, perr.ErrorCodeInvalidMetric) {
		sugg := metric.Vocabulary(scope)
		if len(sugg) > maxMetricSuggestions {
			sugg = sugg[:maxMetricSuggestions]
		}
		return Result{
			Kind:        KindError,
			Category:    failInvalidMetric,
			Answer:      "That statistic doesn't apply here. I can answer for: " + strings.Join(sugg, ", ") + ".",
			Suggestions: sugg,
			Err:         err,
		}
	}
	return s.failQuery(err)
}

// generic recovery tips attached to every query failure
var queryTips = []string{
	"Try a simpler question",
	"Ask about a single player or team",
	"Add a season, like 2019/20",
}

// failQuery renders a graph failure without leaking internals; the
// classified cause only shapes the sentence
func (s *Svc) failQuery(err error) Result {
	msg := "Something went wrong answering that."
	switch {
	case perr.IsGraphTimeout(err):
		msg = "That question took too long to answer."
	case perr.IsGraphConnection(err):
		msg = "I couldn't reach the match database just now."
	case perr.IsGraphSyntax(err):
		msg = "I couldn't build a query for that question."
	}
	return Result{
		Kind:        KindError,
		Category:    failQueryFailed,
		Answer:      msg + " " + strings.Join(queryTips, ". ") + ".",
		Suggestions: append([]string(nil), queryTips...),
		Err:         err,
	}
}

// recoverEntity runs a fuzzy pass over name-like residue in the
// question; ok is true only when a near-miss produced suggestions
func (s *Svc) recoverEntity(a question.Analysis, t question.EntityType) (Result, bool) {
	for _, cand := range nameCandidates(a.Question) {
		res := s.resolver.Resolve(cand, t)
		if res.Matched || len(res.Suggestions) == 0 {
			continue
		}
		// casers are stateful, so build one per call
		display := cases.Title(language.English).String(cand)
		return Result{
			Kind:        KindError,
			Category:    failEntityNotFound,
			Answer:      fmt.Sprintf("I don't know %q. Did you mean %s?", display, joinOr(res.Suggestions)),
			Suggestions: res.Suggestions,
			Err:         perr.EntityNotFoundf("no %s named %q", t, cand),
		}, true
	}
	return Result{}, false
}

// residueStopwords are tokens that cannot be part of a name: question
// scaffolding, connectives, direction words, and metric surface forms
var residueStopwords = map[string]struct{}{}

func init() {
	words := []string{
		"how", "many", "much", "what", "whats", "who", "which", "where", "when",
		"did", "does", "do", "has", "have", "had", "is", "are", "was", "were",
		"it", "they", "them", "he", "she", "we", "you", "i", "us", "him", "her",
		"his", "their", "our", "my", "that", "those", "this", "these",
		"the", "a", "an", "in", "on", "for", "of", "at", "by", "to", "from",
		"and", "or", "but", "with", "ever", "all", "time", "career",
		"most", "least", "fewest", "highest", "lowest", "best", "worst", "top", "bottom",
		"season", "seasons", "league", "division", "club", "team",
		"game", "games", "match", "matches", "fixture", "fixtures",
		"goal", "goals", "scored", "score", "scores",
		"assist", "assists", "provided",
		"appearance", "appearances", "apps", "played", "made",
		"card", "cards", "yellow", "red", "booked", "bookings",
		"sheet", "sheets", "clean", "kept",
		"conceded", "concede", "point", "points",
		"win", "wins", "won", "draw", "draws", "drew", "loss", "losses", "lost",
		"per", "average", "ratio", "home", "away",
	}
	for _, w := range words {
		residueStopwords[w] = struct{}{}
	}
}

// nameCandidates extracts runs of non-stopword, non-numeric tokens as
// candidate names, longest first, capped at three
func nameCandidates(text string) []string {
	var (
		cands []string
		run   []string
	)
	flush := func() {
		if len(run) > 0 {
			cands = append(cands, strings.Join(run, " "))
			run = nil
		}
	}
	for _, tok := range phrase.Tokens(text) {
		if _, stop := residueStopwords[tok]; stop || hasDigit(tok) {
			flush()
			continue
		}
		run = append(run, tok)
	}
	flush()

	// longest candidate first; full names beat stray words
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && len(cands[j]) > len(cands[j-1]); j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
	if len(cands) > 3 {
		cands = cands[:3]
	}
	return cands
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// joinOr joins with commas and a final "or"
func joinOr(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
	}
}
