package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"touchline/internal/core/answer"
	"touchline/internal/core/filterspec"
	"touchline/internal/core/metric"
	"touchline/internal/core/phrase"
	"touchline/internal/core/question"
	perr "touchline/internal/platform/errors"
	"touchline/internal/platform/metrics"
	"touchline/internal/services/api/ask/domain"
)

// handlerFunc is one routed answer strategy; handlers return a Result
// in every path and never propagate errors upward
type handlerFunc func(ctx context.Context, a question.Analysis) Result

// rule is one row of the dispatch table; the first matching row wins
type rule struct {
	name string
	when func(a question.Analysis) bool
	run  handlerFunc
}

func typeIs(t question.Type) func(question.Analysis) bool {
	return func(a question.Analysis) bool { return a.Type == t }
}

// rules builds the ordered dispatch table; adding a question shape
// means adding a row, not editing a switch
func (s *Svc) rules() []rule {
	return []rule{
		{"clarify", typeIs(question.TypeAmbiguous), s.handleAmbiguous},
		{"relationship", typeIs(question.TypeRelationship), s.handleRelationship},
		{"league", typeIs(question.TypeLeague), s.handleLeague},
		{"club", typeIs(question.TypeClub), s.handleClub},
		{"team", typeIs(question.TypeTeam), s.handleTeam},
		{"leaders", func(a question.Analysis) bool {
			return a.Type == question.TypePlayer &&
				len(a.EntitiesOf(question.EntityPlayer)) == 0 &&
				(a.Direction != question.DirectionNone || leaderboardLimit(a.Question) > 1)
		}, s.handleLeaders},
		{"player", typeIs(question.TypePlayer), s.handlePlayer},
	}
}

// dispatch routes the analysis through the rule table, timing the
// handler and absorbing panics into an error result
func (s *Svc) dispatch(ctx context.Context, a question.Analysis) (res Result) {
	for _, r := range s.table {
		if !r.when(a) {
			continue
		}
		start := time.Now()
		defer func() {
			metrics.Get().GraphQuerySeconds.WithLabelValues(r.name).Observe(time.Since(start).Seconds())
			if p := recover(); p != nil {
				res = s.failQuery(perr.PanicErrf("handler %s: %v", r.name, p))
			}
		}()
		res = r.run(ctx, a)
		res.Steps = append([]string{"routed to " + r.name}, res.Steps...)
		return res
	}
	// the table's clarify row catches every ambiguous analysis, so an
	// unrouted question indicates a type the table does not know
	return s.failQuery(perr.Internalf("no dispatch rule for question type %q", a.Type))
}

// specFrom lifts the analysis into a structured filter; the subject
// entity itself is bound by the handler, not the filter
func specFrom(a question.Analysis) filterspec.Spec {
	spec := filterspec.Spec{
		TimeRange:  a.TimeRange,
		Opposition: filterspec.Opposition{All: true},
	}
	for _, e := range a.EntitiesOf(question.EntityTeam) {
		spec.Teams = append(spec.Teams, e.Name)
	}
	if opp, ok := a.FirstEntity(question.EntityOpposition); ok {
		spec.Opposition = filterspec.Opposition{SearchTerm: opp.Name}
	}
	if phrase.ContainsWord(a.Question, "home") {
		spec.Location = []string{"Home"}
	} else if phrase.ContainsWord(a.Question, "away") {
		spec.Location = []string{"Away"}
	}
	return spec
}

func (s *Svc) handleAmbiguous(_ context.Context, a question.Analysis) Result {
	// a question with a statistic but no recognizable subject often
	// carries a misspelt name worth a fuzzy pass
	if len(a.Metrics) > 0 && len(a.Entities) == 0 {
		if r, ok := s.recoverEntity(a, question.EntityPlayer); ok {
			return r
		}
	}
	msg := a.Clarification
	if msg == "" {
		msg = "I couldn't work out what you're asking. Try naming a player or team and a statistic, like \"How many goals has Luke Bangs scored?\""
	}
	return Result{Kind: KindClarification, Category: failAmbiguous, Answer: msg}
}

func (s *Svc) handlePlayer(ctx context.Context, a question.Analysis) Result {
	p, ok := a.FirstEntity(question.EntityPlayer)
	if !ok {
		if r, ok := s.recoverEntity(a, question.EntityPlayer); ok {
			return r
		}
		return s.missingEntity(question.EntityPlayer)
	}
	code := metric.Primary(a.Metrics)
	if code == "" {
		return s.missingMetric(metric.ScopePlayer)
	}

	agg, err := s.repo.PlayerTotal(ctx, p.Name, code, specFrom(a))
	if err != nil {
		return s.failRepo(err, metric.ScopePlayer)
	}

	stat := answer.Stat{
		Entity:     p.Name,
		MetricCode: code,
		Value:      agg.Value,
		Category:   answer.Basic,
		TimePhrase: answer.TimePhrase(a.TimeRange.Seasons),
	}
	if t, ok := a.FirstEntity(question.EntityTeam); ok {
		stat.Category = answer.TeamSpecific
		stat.Team = t.Name
	}
	text, err := answer.Format(stat)
	if err != nil {
		return s.failRepo(err, metric.ScopePlayer)
	}
	return Result{Kind: KindStat, Answer: text, Query: agg.Query}
}

func (s *Svc) handleLeaders(ctx context.Context, a question.Analysis) Result {
	code := metric.Primary(a.Metrics)
	if code == "" {
		return s.missingMetric(metric.ScopePlayer)
	}
	limit := leaderboardLimit(a.Question)
	asc := a.Direction == question.DirectionLeast

	ls, err := s.repo.PlayerLeaders(ctx, code, specFrom(a), asc, limit)
	if err != nil {
		return s.failRepo(err, metric.ScopePlayer)
	}
	if len(ls.Rows) == 0 {
		d := metric.MustFind(code)
		return Result{
			Kind:   KindStat,
			Answer: "I couldn't find any " + d.Display + " records to rank.",
			Query:  ls.Query,
		}
	}

	if limit == 1 || len(ls.Rows) == 1 {
		dir := a.Direction
		if dir == question.DirectionNone {
			dir = question.DirectionMost
		}
		text, err := answer.Format(answer.Stat{
			Entity:     ls.Rows[0].Name,
			MetricCode: code,
			Value:      ls.Rows[0].Value,
			Category:   answer.Comparison,
			Direction:  string(dir),
			TimePhrase: answer.TimePhrase(a.TimeRange.Seasons),
		})
		if err != nil {
			return s.failRepo(err, metric.ScopePlayer)
		}
		return Result{Kind: KindStat, Answer: text, Query: ls.Query}
	}

	entries := make([]answer.RankedEntry, 0, len(ls.Rows))
	viz := &domain.Visualization{Kind: "bar", Title: metric.MustFind(code).Display + " leaders"}
	for _, row := range ls.Rows {
		entries = append(entries, answer.RankedEntry{Name: row.Name, Value: row.Value})
		viz.Labels = append(viz.Labels, row.Name)
		viz.Values = append(viz.Values, row.Value)
	}
	text, err := answer.Ranked(code, entries)
	if err != nil {
		return s.failRepo(err, metric.ScopePlayer)
	}
	return Result{Kind: KindRanked, Answer: text, Visualization: viz, Query: ls.Query}
}

func (s *Svc) handleTeam(ctx context.Context, a question.Analysis) Result {
	t, ok := a.FirstEntity(question.EntityTeam)
	if !ok {
		if r, ok := s.recoverEntity(a, question.EntityTeam); ok {
			return r
		}
		return s.missingEntity(question.EntityTeam)
	}
	code := metric.Primary(a.Metrics)
	if code == "" {
		return s.missingMetric(metric.ScopeTeam)
	}

	spec := specFrom(a)
	spec.Teams = nil // the side itself binds through $team
	agg, err := s.repo.TeamTotal(ctx, t.Name, code, spec)
	if err != nil {
		return s.failRepo(err, metric.ScopeTeam)
	}
	text, err := answer.Format(answer.Stat{
		Entity:     "The " + t.Name,
		MetricCode: code,
		Value:      agg.Value,
		Category:   answer.Basic,
		TimePhrase: answer.TimePhrase(a.TimeRange.Seasons),
	})
	if err != nil {
		return s.failRepo(err, metric.ScopeTeam)
	}
	return Result{Kind: KindStat, Answer: text, Query: agg.Query}
}

func (s *Svc) handleClub(ctx context.Context, a question.Analysis) Result {
	code := metric.Primary(a.Metrics)
	if code == "" {
		return s.missingMetric(metric.ScopeTeam)
	}
	agg, err := s.repo.ClubTotal(ctx, code, specFrom(a))
	if err != nil {
		return s.failRepo(err, metric.ScopeTeam)
	}
	text, err := answer.Format(answer.Stat{
		Entity:     "The club",
		MetricCode: code,
		Value:      agg.Value,
		Category:   answer.Basic,
		TimePhrase: answer.TimePhrase(a.TimeRange.Seasons),
	})
	if err != nil {
		return s.failRepo(err, metric.ScopeTeam)
	}
	return Result{Kind: KindStat, Answer: text, Query: agg.Query}
}

// handleLeague fine-dispatches on phrasing cues in order: goal
// difference, defensive record, lowest finish, then highest finish
func (s *Svc) handleLeague(ctx context.Context, a question.Analysis) Result {
	t, ok := a.FirstEntity(question.EntityTeam)
	if !ok {
		if r, ok := s.recoverEntity(a, question.EntityTeam); ok {
			return r
		}
		return s.missingEntity(question.EntityTeam)
	}
	fl, err := s.repo.LeagueFinishes(ctx, t.Name)
	if err != nil {
		return s.failRepo(err, metric.ScopeTeam)
	}
	if len(fl.Rows) == 0 {
		return Result{
			Kind:   KindFinish,
			Answer: "I have no league history for the " + t.Name + ".",
			Query:  fl.Query,
		}
	}

	worst := a.Direction == question.DirectionLeast
	switch {
	case phrase.ContainsWord(a.Question, "difference"):
		best := fl.Rows[0]
		for _, r := range fl.Rows[1:] {
			if (worst && r.GoalDifference < best.GoalDifference) ||
				(!worst && r.GoalDifference > best.GoalDifference) {
				best = r
			}
		}
		return Result{
			Kind: KindFinish,
			Answer: fmt.Sprintf("The %s %s goal difference was %s, in the %s season.",
				answer.Possessive(t.Name), qualifier(worst), signedNumber(best.GoalDifference), best.Season),
			Query: fl.Query,
		}

	case phrase.ContainsAny(a.Question, "conceded", "defensive", "defence"):
		best := fl.Rows[0]
		for _, r := range fl.Rows[1:] {
			if (worst && r.GoalsAgainst > best.GoalsAgainst) ||
				(!worst && r.GoalsAgainst < best.GoalsAgainst) {
				best = r
			}
		}
		return Result{
			Kind: KindFinish,
			Answer: fmt.Sprintf("The %s %s defensive record was %s conceded, in the %s season.",
				answer.Possessive(t.Name), qualifier(worst),
				answer.Count(best.GoalsAgainst, "goal", "goals"), best.Season),
			Query: fl.Query,
		}

	default:
		// league positions count up from 1st, so the best finish is
		// the minimum position
		best := fl.Rows[0]
		for _, r := range fl.Rows[1:] {
			if (worst && r.Position > best.Position) || (!worst && r.Position < best.Position) {
				best = r
			}
		}
		q := "highest"
		if worst {
			q = "lowest"
		}
		return Result{Kind: KindFinish, Answer: answer.Finish(t.Name, q, best.Position, best.Season), Query: fl.Query}
	}
}

// handleRelationship fine-dispatches between a shared-appearances
// count and a combined metric total
func (s *Svc) handleRelationship(ctx context.Context, a question.Analysis) Result {
	players := a.EntitiesOf(question.EntityPlayer)
	if len(players) < 2 {
		return Result{
			Kind:     KindClarification,
			Category: failAmbiguous,
			Answer:   "I need two player names to answer that. Who are you asking about?",
		}
	}
	pa, pb := players[0].Name, players[1].Name
	spec := specFrom(a)
	code := metric.Primary(a.Metrics)

	if code != "" && phrase.ContainsAny(a.Question, "combined", "between them", "in total") {
		agg, err := s.repo.CombinedTotal(ctx, pa, pb, code, spec)
		if err != nil {
			return s.failRepo(err, metric.ScopePlayer)
		}
		d := metric.MustFind(code)
		return Result{
			Kind: KindRelationship,
			Answer: fmt.Sprintf("%s and %s have %s %s between them.",
				pa, pb, d.Verb, answer.Count(agg.Value, d.Singular, d.Display)),
			Query: agg.Query,
		}
	}

	agg, err := s.repo.FixturesTogether(ctx, pa, pb, spec)
	if err != nil {
		return s.failRepo(err, metric.ScopePlayer)
	}
	return Result{
		Kind: KindRelationship,
		Answer: fmt.Sprintf("%s and %s have played together in %s.",
			pa, pb, answer.Count(agg.Value, "fixture", "fixtures")),
		Query: agg.Query,
	}
}

var reTopN = regexp.MustCompile(`(^| )top (\d+)( |$)`)

// leaderboard cue words asking for more than the single extremal entry
var leaderboardCues = []string{"leaderboard", "ranking", "rankings"}

// leaderboardLimit reads an explicit "top N" out of the question, falls
// back to 5 for leaderboard phrasing, and to 1 otherwise
func leaderboardLimit(text string) int {
	if m := reTopN.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 1 {
			return n
		}
	}
	if phrase.ContainsAny(text, leaderboardCues...) {
		return 5
	}
	return 1
}

func qualifier(worst bool) string {
	if worst {
		return "worst"
	}
	return "best"
}

// signedNumber renders a goal difference with its sign, e.g. "+23"
func signedNumber(v float64) string {
	if v > 0 {
		return "+" + answer.Number(v)
	}
	return answer.Number(v)
}
