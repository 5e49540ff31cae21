package repo

import (
	"context"
	"strings"
	"testing"

	"touchline/internal/core/filterspec"
	"touchline/internal/platform/store"
)

// recordingQ captures the query text and bindings a method emits
type recordingQ struct {
	query  string
	params map[string]any
	rows   []store.Record
}

func (r *recordingQ) ExecuteQuery(_ context.Context, q string, p map[string]any) ([]store.Record, error) {
	r.query = q
	r.params = p
	return r.rows, nil
}

func (r *recordingQ) GraphLabel() string { return "Club" }

func TestCombinedTotal_SecondPathIsOptional(t *testing.T) {
	t.Parallel()
	q := &recordingQ{rows: []store.Record{{"value": 27.0}}}
	r := NewGraph().Bind(q)

	spec := filterspec.Spec{TimeRange: filterspec.TimeRange{
		Type:    filterspec.TimeSeason,
		Seasons: []string{"2019/20"},
	}}
	agg, err := r.CombinedTotal(context.Background(), "Luke Bangs", "Steve Archer", "goals", spec)
	if err != nil {
		t.Fatalf("CombinedTotal: %v", err)
	}
	if agg.Value != 27 {
		t.Fatalf("value = %v", agg.Value)
	}

	// the first path must stay mandatory, the second must not drop the
	// row set when the second player has nothing under the filters
	if !strings.Contains(q.query, "MATCH (a:Player:Club {name: $playerA})") {
		t.Fatalf("missing first path match:\n%s", q.query)
	}
	if !strings.Contains(q.query, "OPTIONAL MATCH (b:Player:Club {name: $playerB})") {
		t.Fatalf("second path must be OPTIONAL MATCH:\n%s", q.query)
	}
	// an absent second path aggregates to null; the total must not
	if !strings.Contains(q.query, "RETURN first + coalesce(") {
		t.Fatalf("second aggregate must be coalesced:\n%s", q.query)
	}

	// filters apply to both paths through alias replay
	if !strings.Contains(q.query, "f.season IN $seasons") || !strings.Contains(q.query, "g.season IN $seasons") {
		t.Fatalf("season filter not replayed onto both paths:\n%s", q.query)
	}
	if q.params["playerA"] != "Luke Bangs" || q.params["playerB"] != "Steve Archer" {
		t.Fatalf("params = %v", q.params)
	}
}

func TestCombinedTotal_NoRowsCoercesToZero(t *testing.T) {
	t.Parallel()
	q := &recordingQ{} // no rows at all
	r := NewGraph().Bind(q)

	agg, err := r.CombinedTotal(context.Background(), "Luke Bangs", "Steve Archer", "goals", filterspec.Spec{})
	if err != nil {
		t.Fatalf("CombinedTotal: %v", err)
	}
	if agg.Value != 0 {
		t.Fatalf("value = %v", agg.Value)
	}
}

func TestFixturesTogether_ReplaysFiltersOntoBothPaths(t *testing.T) {
	t.Parallel()
	q := &recordingQ{rows: []store.Record{{"value": int64(34)}}}
	r := NewGraph().Bind(q)

	spec := filterspec.Spec{Location: []string{"Home"}}
	agg, err := r.FixturesTogether(context.Background(), "Luke Bangs", "Steve Archer", spec)
	if err != nil {
		t.Fatalf("FixturesTogether: %v", err)
	}
	if agg.Value != 34 {
		t.Fatalf("value = %v", agg.Value)
	}
	if !strings.Contains(q.query, "g.fixtureId = f.fixtureId") {
		t.Fatalf("missing fixture join predicate:\n%s", q.query)
	}
	if !strings.Contains(q.query, "f.location IN $locations") || !strings.Contains(q.query, "g.location IN $locations") {
		t.Fatalf("location filter not replayed onto both paths:\n%s", q.query)
	}
}
