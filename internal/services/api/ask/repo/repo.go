// Package repo builds and executes the parameterized graph queries the
// ask handlers need
//
// Every query scopes its node matches on the dataset partition label
// and binds values through named parameters only; compiled filter
// fragments target the canonical f/d aliases and are replayed onto
// g/e for the two-path relationship queries
package repo

import (
	"context"
	"fmt"
	"strings"

	"touchline/internal/core/filterspec"
	"touchline/internal/modkit/repokit"
	perr "touchline/internal/platform/errors"
	"touchline/internal/platform/store"
)

// Agg is a single aggregate value plus the query that produced it
type Agg struct {
	Value float64
	Query string
}

// Row is one leaderboard entry
type Row struct {
	Name  string
	Value float64
}

// Leaders is a ranked list plus its query text
type Leaders struct {
	Rows  []Row
	Query string
}

// Finish is one season's league record for a team
type Finish struct {
	Season         string
	Position       int
	Points         float64
	GoalDifference float64
	GoalsAgainst   float64
}

// FinishList is every season finish for a team plus its query text
type FinishList struct {
	Rows  []Finish
	Query string
}

// Repo is the graph read surface for the ask handlers
type Repo interface {
	// PlayerTotal aggregates one metric for one player under the filters
	PlayerTotal(ctx context.Context, player, code string, spec filterspec.Spec) (Agg, error)
	// PlayerLeaders ranks players by one metric; asc orders low to high
	PlayerLeaders(ctx context.Context, code string, spec filterspec.Spec, asc bool, limit int) (Leaders, error)
	// TeamTotal aggregates one metric for one of the club's sides
	TeamTotal(ctx context.Context, team, code string, spec filterspec.Spec) (Agg, error)
	// ClubTotal aggregates one metric across every side
	ClubTotal(ctx context.Context, code string, spec filterspec.Spec) (Agg, error)
	// LeagueFinishes lists every season finish for a team
	LeagueFinishes(ctx context.Context, team string) (FinishList, error)
	// FixturesTogether counts fixtures both players appeared in
	FixturesTogether(ctx context.Context, playerA, playerB string, spec filterspec.Spec) (Agg, error)
	// CombinedTotal sums one metric over two players under identical filters
	CombinedTotal(ctx context.Context, playerA, playerB, code string, spec filterspec.Spec) (Agg, error)
}

// NewGraph creates a graph repository binder
func NewGraph() repokit.Binder[Repo] { return graph{} }

type (
	graph struct{}

	queries struct{ q repokit.Queryer }
)

// Bind binds a graph queryer to the Repo implementation
func (graph) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// playerExprs maps player-scope metric codes to their aggregate
// expression over the d (match detail) and f (fixture) aliases
var playerExprs = map[string]string{
	"goals":       "sum(coalesce(d.goals, 0))",
	"assists":     "sum(coalesce(d.assists, 0))",
	"appearances": "count(d)",
	"cleanSheets": "sum(CASE WHEN coalesce(f.goalsAgainst, 0) = 0 THEN 1 ELSE 0 END)",
	"yellowCards": "sum(coalesce(d.yellowCards, 0))",
	"redCards":    "sum(coalesce(d.redCards, 0))",
	"motm":        "sum(CASE WHEN d.manOfTheMatch THEN 1 ELSE 0 END)",
	"goalsPerGame": "CASE WHEN count(d) = 0 THEN 0.0 " +
		"ELSE toFloat(sum(coalesce(d.goals, 0))) / count(d) END",
}

// teamExprs maps team-scope metric codes to their aggregate expression
// over the f (fixture) alias
var teamExprs = map[string]string{
	"goals":         "sum(coalesce(f.goalsFor, 0))",
	"goalsConceded": "sum(coalesce(f.goalsAgainst, 0))",
	"wins":          "sum(CASE WHEN f.result = 'Win' THEN 1 ELSE 0 END)",
	"draws":         "sum(CASE WHEN f.result = 'Draw' THEN 1 ELSE 0 END)",
	"losses":        "sum(CASE WHEN f.result = 'Loss' THEN 1 ELSE 0 END)",
	"cleanSheets":   "sum(CASE WHEN coalesce(f.goalsAgainst, 0) = 0 THEN 1 ELSE 0 END)",
	"points": "sum(CASE f.result WHEN 'Win' THEN 3 WHEN 'Draw' THEN 1 ELSE 0 END)",
}

// PlayerExpr resolves a player-scope aggregate or reports the metric
// unusable in a player context
func PlayerExpr(code string) (string, error) {
	if e, ok := playerExprs[code]; ok {
		return e, nil
	}
	return "", perr.InvalidMetricf("metric %q cannot be asked about a player", code)
}

// TeamExpr resolves a team-scope aggregate or reports the metric
// unusable in a team context
func TeamExpr(code string) (string, error) {
	if e, ok := teamExprs[code]; ok {
		return e, nil
	}
	return "", perr.InvalidMetricf("metric %q cannot be asked about a team", code)
}

// playerPath is the canonical player match clause; label is
// interpolated after validation by the store adapter, params only
// carry values
const playerPath = "MATCH (p:Player:%[1]s {name: $player})-[:PLAYED_IN]->" +
	"(d:MatchDetail:%[1]s)-[:IN_FIXTURE]->(f:Fixture:%[1]s)"

func (r *queries) PlayerTotal(ctx context.Context, player, code string, spec filterspec.Spec) (Agg, error) {
	expr, err := PlayerExpr(code)
	if err != nil {
		return Agg{}, err
	}
	params := filterspec.Params{"player": player}
	frags, err := filterspec.Compile(spec, params)
	if err != nil {
		return Agg{}, err
	}
	q := fmt.Sprintf(playerPath, r.q.GraphLabel()) + "\n" +
		clause(filterspec.Where(frags)) +
		"RETURN " + expr + " AS value"
	return r.one(ctx, q, params)
}

func (r *queries) PlayerLeaders(
	ctx context.Context,
	code string,
	spec filterspec.Spec,
	asc bool,
	limit int,
) (Leaders, error) {
	expr, err := PlayerExpr(code)
	if err != nil {
		return Leaders{}, err
	}
	if limit <= 0 || limit > 25 {
		limit = 1
	}
	params := filterspec.Params{"limit": limit}
	frags, err := filterspec.Compile(spec, params)
	if err != nil {
		return Leaders{}, err
	}
	order := "DESC"
	if asc {
		order = "ASC"
	}
	q := fmt.Sprintf(
		"MATCH (p:Player:%[1]s)-[:PLAYED_IN]->(d:MatchDetail:%[1]s)-[:IN_FIXTURE]->(f:Fixture:%[1]s)",
		r.q.GraphLabel(),
	) + "\n" +
		clause(filterspec.Where(frags)) +
		"RETURN p.name AS name, " + expr + " AS value\n" +
		"ORDER BY value " + order + ", name ASC\n" +
		"LIMIT $limit"

	recs, err := r.q.ExecuteQuery(ctx, q, params)
	if err != nil {
		return Leaders{}, err
	}
	out := Leaders{Query: q}
	for _, rec := range recs {
		out.Rows = append(out.Rows, Row{
			Name:  store.StrOf(rec, "name"),
			Value: store.NumOf(rec, "value"),
		})
	}
	return out, nil
}

func (r *queries) TeamTotal(ctx context.Context, team, code string, spec filterspec.Spec) (Agg, error) {
	expr, err := TeamExpr(code)
	if err != nil {
		return Agg{}, err
	}
	params := filterspec.Params{"team": team}
	frags, err := filterspec.Compile(spec, params)
	if err != nil {
		return Agg{}, err
	}
	preds := append([]string{"f.team = $team"}, frags...)
	q := fmt.Sprintf("MATCH (f:Fixture:%s)", r.q.GraphLabel()) + "\n" +
		clause(filterspec.Where(preds)) +
		"RETURN " + expr + " AS value"
	return r.one(ctx, q, params)
}

func (r *queries) ClubTotal(ctx context.Context, code string, spec filterspec.Spec) (Agg, error) {
	expr, err := TeamExpr(code)
	if err != nil {
		return Agg{}, err
	}
	params := filterspec.Params{}
	frags, err := filterspec.Compile(spec, params)
	if err != nil {
		return Agg{}, err
	}
	q := fmt.Sprintf("MATCH (f:Fixture:%s)", r.q.GraphLabel()) + "\n" +
		clause(filterspec.Where(frags)) +
		"RETURN " + expr + " AS value"
	return r.one(ctx, q, params)
}

func (r *queries) LeagueFinishes(ctx context.Context, team string) (FinishList, error) {
	q := fmt.Sprintf(
		"MATCH (t:Team:%[1]s {name: $team})-[:COMPETED_IN]->(s:LeagueSeason:%[1]s)",
		r.q.GraphLabel(),
	) + "\n" +
		"RETURN s.season AS season, s.position AS position, coalesce(s.points, 0) AS points,\n" +
		"       coalesce(s.goalDifference, 0) AS goalDifference, coalesce(s.goalsAgainst, 0) AS goalsAgainst\n" +
		"ORDER BY s.season"

	recs, err := r.q.ExecuteQuery(ctx, q, map[string]any{"team": team})
	if err != nil {
		return FinishList{}, err
	}
	out := FinishList{Query: q}
	for _, rec := range recs {
		out.Rows = append(out.Rows, Finish{
			Season:         store.StrOf(rec, "season"),
			Position:       int(store.Int64Of(rec, "position")),
			Points:         store.NumOf(rec, "points"),
			GoalDifference: store.NumOf(rec, "goalDifference"),
			GoalsAgainst:   store.NumOf(rec, "goalsAgainst"),
		})
	}
	return out, nil
}

// FixturesTogether counts distinct fixtures both players have a match
// detail in; the compiled filters constrain the first path and are
// replayed verbatim onto the second path's aliases
func (r *queries) FixturesTogether(
	ctx context.Context,
	playerA, playerB string,
	spec filterspec.Spec,
) (Agg, error) {
	params := filterspec.Params{"playerA": playerA, "playerB": playerB}
	frags, err := filterspec.Compile(spec, params)
	if err != nil {
		return Agg{}, err
	}
	replayed := filterspec.ReplayAs(
		filterspec.ReplayAs(frags, filterspec.AliasFixture, "g"),
		filterspec.AliasDetail, "e",
	)
	preds := append([]string{"g.fixtureId = f.fixtureId"}, append(frags, replayed...)...)

	q := fmt.Sprintf(
		"MATCH (a:Player:%[1]s {name: $playerA})-[:PLAYED_IN]->(d:MatchDetail:%[1]s)-[:IN_FIXTURE]->(f:Fixture:%[1]s)\n"+
			"MATCH (b:Player:%[1]s {name: $playerB})-[:PLAYED_IN]->(e:MatchDetail:%[1]s)-[:IN_FIXTURE]->(g:Fixture:%[1]s)",
		r.q.GraphLabel(),
	) + "\n" +
		clause(filterspec.Where(preds)) +
		"RETURN count(DISTINCT f.fixtureId) AS value"
	return r.one(ctx, q, params)
}

// CombinedTotal sums one player-scope metric over both players'
// independent fixture sets under identical, replayed filters
//
// The second path is OPTIONAL: a plain MATCH with `first` as a grouping
// key would emit zero rows when the second player has none under the
// filters, collapsing the whole answer to 0 and losing the first total
func (r *queries) CombinedTotal(
	ctx context.Context,
	playerA, playerB, code string,
	spec filterspec.Spec,
) (Agg, error) {
	expr, err := PlayerExpr(code)
	if err != nil {
		return Agg{}, err
	}
	params := filterspec.Params{"playerA": playerA, "playerB": playerB}
	frags, err := filterspec.Compile(spec, params)
	if err != nil {
		return Agg{}, err
	}
	replayed := filterspec.ReplayAs(
		filterspec.ReplayAs(frags, filterspec.AliasFixture, "g"),
		filterspec.AliasDetail, "e",
	)
	// retarget the aggregate expression onto the second path's aliases
	secondExpr := strings.NewReplacer("d.", "e.", "f.", "g.", "(d)", "(e)").Replace(expr)

	q := fmt.Sprintf(
		"MATCH (a:Player:%[1]s {name: $playerA})-[:PLAYED_IN]->(d:MatchDetail:%[1]s)-[:IN_FIXTURE]->(f:Fixture:%[1]s)",
		r.q.GraphLabel(),
	) + "\n" +
		clause(filterspec.Where(frags)) +
		"WITH " + expr + " AS first\n" +
		fmt.Sprintf(
			"OPTIONAL MATCH (b:Player:%[1]s {name: $playerB})-[:PLAYED_IN]->(e:MatchDetail:%[1]s)-[:IN_FIXTURE]->(g:Fixture:%[1]s)",
			r.q.GraphLabel(),
		) + "\n" +
		clause(filterspec.Where(replayed)) +
		"RETURN first + coalesce(" + secondExpr + ", 0) AS value"
	return r.one(ctx, q, params)
}

// one executes a single-aggregate query; a missing row coerces to 0
func (r *queries) one(ctx context.Context, q string, params map[string]any) (Agg, error) {
	recs, err := r.q.ExecuteQuery(ctx, q, params)
	if err != nil {
		return Agg{Query: q}, err
	}
	if len(recs) == 0 {
		return Agg{Value: 0, Query: q}, nil
	}
	return Agg{Value: store.NumOf(recs[0], "value"), Query: q}, nil
}

func clause(where string) string {
	if where == "" {
		return ""
	}
	return where + "\n"
}
