package convo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"touchline/internal/core/filterspec"
	"touchline/internal/core/question"
	ptime "touchline/internal/platform/time"
)

func prevTurn() Turn {
	return Turn{
		Question: "how many goals has luke bangs scored",
		Analysis: question.Analysis{
			Question: "how many goals has luke bangs scored",
			Entities: []question.Entity{{Name: "Luke Bangs", Type: question.EntityPlayer}},
			Metrics:  []string{"goals"},
			Type:     question.TypePlayer,
		},
	}
}

func TestMerge_NoCueDoesNotBackfill(t *testing.T) {
	t.Parallel()

	a := question.Analysis{
		Question: "what happened on saturday",
		Type:     question.TypeAmbiguous,
	}
	got := Merge(a, prevTurn())

	if len(got.Entities) != 0 || len(got.Metrics) != 0 {
		t.Fatalf("no cue must not backfill, got %+v", got)
	}
}

func TestMerge_QuantityCueBackfills(t *testing.T) {
	t.Parallel()

	a := question.Analysis{
		Question: "how many did they get",
		Type:     question.TypeAmbiguous,
	}
	got := Merge(a, prevTurn())

	if len(got.Entities) != 1 || got.Entities[0].Name != "Luke Bangs" {
		t.Fatalf("entities not backfilled: %+v", got.Entities)
	}
	if len(got.Metrics) != 1 || got.Metrics[0] != "goals" {
		t.Fatalf("metrics not backfilled: %+v", got.Metrics)
	}
	if got.Type != question.TypePlayer {
		t.Fatalf("type not reclassified, got %q", got.Type)
	}
	if got.Clarification != "" {
		t.Fatalf("clarification should clear after backfill")
	}
}

func TestMerge_PronounCueBackfills(t *testing.T) {
	t.Parallel()

	a := question.Analysis{Question: "and before that", Type: question.TypeAmbiguous}
	got := Merge(a, prevTurn())
	if len(got.Entities) == 0 {
		t.Fatalf("pronoun cue should backfill")
	}
}

func TestMerge_NeverOverwritesPresentValues(t *testing.T) {
	t.Parallel()

	a := question.Analysis{
		Question: "how many assists did steve archer get",
		Entities: []question.Entity{{Name: "Steve Archer", Type: question.EntityPlayer}},
		Metrics:  []string{"assists"},
		Type:     question.TypePlayer,
	}
	got := Merge(a, prevTurn())

	if got.Entities[0].Name != "Steve Archer" {
		t.Fatalf("entities overwritten: %+v", got.Entities)
	}
	if got.Metrics[0] != "assists" {
		t.Fatalf("metrics overwritten: %+v", got.Metrics)
	}
}

func TestMerge_TemporalCueKeepsNewTimeRange(t *testing.T) {
	t.Parallel()

	// "and in 2019/20?" analyzed alone: season token set, nothing else
	a := question.Analysis{
		Question: "and in 2019/20",
		Type:     question.TypeAmbiguous,
		TimeRange: filterspec.TimeRange{
			Type:    filterspec.TimeSeason,
			Seasons: []string{"2019/20"},
		},
	}

	got := Merge(a, prevTurn())

	if len(got.TimeRange.Seasons) != 1 || got.TimeRange.Seasons[0] != "2019/20" {
		t.Fatalf("new time range must win: %+v", got.TimeRange)
	}
	if len(got.Entities) == 0 || len(got.Metrics) == 0 {
		t.Fatalf("temporal cue should still backfill entities and metrics")
	}
}

func TestReferential(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want bool
	}{
		{"how many did they get", true},
		{"what about those", true},
		{"and in 2019/20", true},
		{"during the 2018-2019 season", true},
		{"how many goals has luke bangs scored", true}, // quantity phrase
		{"what happened on saturday", false},
		{"best defensive record", false},
	}
	for _, tc := range cases {
		if got := Referential(tc.text); got != tc.want {
			t.Fatalf("Referential(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestMemoryStore_HistoryBounded(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(nil)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := s.Append(ctx, "sess", Turn{Question: fmt.Sprintf("q%d", i)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	c, ok, err := s.Get(ctx, "sess")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(c.History) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(c.History), MaxHistory)
	}
	if c.History[len(c.History)-1].Question != "q9" {
		t.Fatalf("newest turn not kept: %+v", c.History)
	}
	if c.History[0].Question != "q7" {
		t.Fatalf("oldest surviving turn wrong: %+v", c.History)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(nil)
	_, ok, err := s.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ok {
		t.Fatalf("missing session reported as present")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(nil)
	ctx := context.Background()
	_ = s.Append(ctx, "sess", Turn{Question: "q"})
	if err := s.Delete(ctx, "sess"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "sess"); ok {
		t.Fatalf("session survived delete")
	}
}

func TestMemoryStore_SweepEvictsIdleOnly(t *testing.T) {
	t.Parallel()

	clock := &ptime.Fixed{T: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(clock)
	ctx := context.Background()

	_ = s.Append(ctx, "old", Turn{Question: "q"})
	clock.Advance(59 * time.Minute)
	_ = s.Append(ctx, "fresh", Turn{Question: "q"})
	clock.Advance(2 * time.Minute) // "old" is now 61m idle, "fresh" 2m

	n, err := s.Sweep(ctx, IdleEviction)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	if _, ok, _ := s.Get(ctx, "old"); ok {
		t.Fatalf("idle session survived sweep")
	}
	if _, ok, _ := s.Get(ctx, "fresh"); !ok {
		t.Fatalf("fresh session was evicted")
	}
}

func TestMemoryStore_GetDoesNotRefreshIdle(t *testing.T) {
	t.Parallel()

	clock := &ptime.Fixed{T: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(clock)
	ctx := context.Background()

	_ = s.Append(ctx, "sess", Turn{Question: "q"})
	clock.Advance(59 * time.Minute)
	_, _, _ = s.Get(ctx, "sess") // a read must not reset the idle timer
	clock.Advance(2 * time.Minute)

	n, _ := s.Sweep(ctx, IdleEviction)
	if n != 1 {
		t.Fatalf("read refreshed idle timer; evicted = %d, want 1", n)
	}
}

func TestMemoryStore_ConcurrentAppendsStayBounded(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, "sess", Turn{Question: fmt.Sprintf("q%d", i)})
		}(i)
	}
	wg.Wait()

	c, ok, err := s.Get(ctx, "sess")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(c.History) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(c.History), MaxHistory)
	}
}

func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(nil)
	ctx := context.Background()
	_ = s.Append(ctx, "sess", Turn{Question: "q0"})

	c, _, _ := s.Get(ctx, "sess")
	c.History[0].Question = "mutated"

	again, _, _ := s.Get(ctx, "sess")
	if again.History[0].Question != "q0" {
		t.Fatalf("Get must return a snapshot, store was mutated")
	}
}
