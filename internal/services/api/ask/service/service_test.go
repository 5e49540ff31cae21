package service

import (
	"context"
	"strings"
	"testing"

	"touchline/internal/core/convo"
	"touchline/internal/core/filterspec"
	"touchline/internal/core/question"
	perr "touchline/internal/platform/errors"
	"touchline/internal/platform/logger"
	"touchline/internal/services/api/ask/domain"
	"touchline/internal/services/api/ask/repo"
	"touchline/internal/services/catalog"
)

type staticSource map[question.EntityType][]string

func (s staticSource) List(_ context.Context, t question.EntityType) ([]string, error) {
	return s[t], nil
}

// fakeRepo returns canned values and records the last call made
type fakeRepo struct {
	agg      repo.Agg
	leaders  repo.Leaders
	finishes repo.FinishList
	err      error

	lastMethod string
	lastName   string
	lastPair   [2]string
	lastCode   string
	lastSpec   filterspec.Spec
	lastAsc    bool
	lastLimit  int
}

func (f *fakeRepo) PlayerTotal(_ context.Context, player, code string, spec filterspec.Spec) (repo.Agg, error) {
	f.lastMethod, f.lastName, f.lastCode, f.lastSpec = "PlayerTotal", player, code, spec
	return f.agg, f.err
}

func (f *fakeRepo) PlayerLeaders(_ context.Context, code string, spec filterspec.Spec, asc bool, limit int) (repo.Leaders, error) {
	f.lastMethod, f.lastCode, f.lastSpec, f.lastAsc, f.lastLimit = "PlayerLeaders", code, spec, asc, limit
	return f.leaders, f.err
}

func (f *fakeRepo) TeamTotal(_ context.Context, team, code string, spec filterspec.Spec) (repo.Agg, error) {
	f.lastMethod, f.lastName, f.lastCode, f.lastSpec = "TeamTotal", team, code, spec
	return f.agg, f.err
}

func (f *fakeRepo) ClubTotal(_ context.Context, code string, spec filterspec.Spec) (repo.Agg, error) {
	f.lastMethod, f.lastCode, f.lastSpec = "ClubTotal", code, spec
	return f.agg, f.err
}

func (f *fakeRepo) LeagueFinishes(_ context.Context, team string) (repo.FinishList, error) {
	f.lastMethod, f.lastName = "LeagueFinishes", team
	return f.finishes, f.err
}

func (f *fakeRepo) FixturesTogether(_ context.Context, a, b string, spec filterspec.Spec) (repo.Agg, error) {
	f.lastMethod, f.lastPair, f.lastSpec = "FixturesTogether", [2]string{a, b}, spec
	return f.agg, f.err
}

func (f *fakeRepo) CombinedTotal(_ context.Context, a, b, code string, spec filterspec.Spec) (repo.Agg, error) {
	f.lastMethod, f.lastPair, f.lastCode, f.lastSpec = "CombinedTotal", [2]string{a, b}, code, spec
	return f.agg, f.err
}

func newSvc(t *testing.T, r repo.Repo, opts Options) *Svc {
	t.Helper()
	src := staticSource{
		question.EntityPlayer:     {"Luke Bangs", "Steve Archer", "Tom Day"},
		question.EntityTeam:       {"1s", "2s", "3s"},
		question.EntityOpposition: {"Weston Rovers"},
		question.EntityLeague:     {"Division Three"},
	}
	cats := catalog.New(src, catalog.Config{}, logger.Named("test"))
	if err := cats.Refresh(context.Background(), "test"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return New(
		r,
		question.NewAnalyzer(cats),
		catalog.NewResolver(cats, nil),
		convo.NewMemoryStore(nil),
		logger.Named("test"),
		opts,
	)
}

func ask(t *testing.T, s *Svc, in domain.AskInput) domain.AskOutput {
	t.Helper()
	out, err := s.Ask(context.Background(), in)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	return out
}

func TestAsk_PlayerTotal(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 27, Query: "MATCH ..."}}
	s := newSvc(t, fake, Options{Dataset: "club"})

	out := ask(t, s, domain.AskInput{Question: "How many goals has Luke Bangs scored?"})

	if out.Answer != "Luke Bangs has scored 27 goals." {
		t.Fatalf("answer = %q", out.Answer)
	}
	if fake.lastMethod != "PlayerTotal" || fake.lastName != "Luke Bangs" || fake.lastCode != "goals" {
		t.Fatalf("call = %s %s %s", fake.lastMethod, fake.lastName, fake.lastCode)
	}
	if out.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if len(out.Sources) != 1 || out.Sources[0].Dataset != "club" {
		t.Fatalf("sources = %+v", out.Sources)
	}
}

func TestAsk_SessionIDEchoed(t *testing.T) {
	t.Parallel()
	s := newSvc(t, &fakeRepo{agg: repo.Agg{Value: 1}}, Options{})

	out := ask(t, s, domain.AskInput{Question: "How many goals has Luke Bangs scored?", SessionID: "abc-123"})
	if out.SessionID != "abc-123" {
		t.Fatalf("session id = %q", out.SessionID)
	}
}

func TestAsk_FollowUpBackfillsFromHistory(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 27}}
	s := newSvc(t, fake, Options{})

	first := ask(t, s, domain.AskInput{Question: "How many goals has Luke Bangs scored?"})

	out := ask(t, s, domain.AskInput{
		Question:  "And how many in the 2019/20 season?",
		SessionID: first.SessionID,
	})

	if fake.lastMethod != "PlayerTotal" || fake.lastName != "Luke Bangs" || fake.lastCode != "goals" {
		t.Fatalf("follow-up call = %s %s %s", fake.lastMethod, fake.lastName, fake.lastCode)
	}
	want := []string{"2019/20"}
	got := fake.lastSpec.TimeRange.Seasons
	if fake.lastSpec.TimeRange.Type != filterspec.TimeSeason || len(got) != 1 || got[0] != want[0] {
		t.Fatalf("time range = %+v", fake.lastSpec.TimeRange)
	}
	if !strings.Contains(out.Answer, "in the 2019/20 season") {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_FreshQuestionDoesNotBackfill(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 5}}
	s := newSvc(t, fake, Options{})

	first := ask(t, s, domain.AskInput{Question: "How many goals has Luke Bangs scored?"})

	// names its own subject and statistic, so nothing carries over
	ask(t, s, domain.AskInput{
		Question:  "How many assists has Steve Archer provided?",
		SessionID: first.SessionID,
	})
	if fake.lastName != "Steve Archer" || fake.lastCode != "assists" {
		t.Fatalf("call = %s %s", fake.lastName, fake.lastCode)
	}
}

func TestAsk_UnknownPlayerSuggests(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "How many goals has Luke Bngs scored?"})

	if fake.lastMethod != "" {
		t.Fatalf("no query should run, got %s", fake.lastMethod)
	}
	if !strings.Contains(out.Answer, "Did you mean") {
		t.Fatalf("answer = %q", out.Answer)
	}
	found := false
	for _, sg := range out.Suggestions {
		if sg == "Luke Bangs" {
			found = true
		}
	}
	if !found {
		t.Fatalf("suggestions = %v", out.Suggestions)
	}
}

func TestAsk_MissingMetricSuggests(t *testing.T) {
	t.Parallel()
	s := newSvc(t, &fakeRepo{}, Options{})

	out := ask(t, s, domain.AskInput{Question: "Tell me about Luke Bangs"})

	if !strings.Contains(out.Answer, "which statistic") {
		t.Fatalf("answer = %q", out.Answer)
	}
	if len(out.Suggestions) == 0 || len(out.Suggestions) > maxMetricSuggestions {
		t.Fatalf("suggestions = %v", out.Suggestions)
	}
}

func TestAsk_AmbiguousAsksForClarification(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "Tell me something interesting"})

	if fake.lastMethod != "" {
		t.Fatalf("no query should run, got %s", fake.lastMethod)
	}
	if !strings.Contains(out.Answer, "Try naming a player or team") {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_QueryFailureStaysConversational(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{err: perr.Newf(perr.ErrorCodeQueryTimeout, "deadline exceeded")}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "How many goals has Luke Bangs scored?"})

	if !strings.Contains(out.Answer, "took too long") {
		t.Fatalf("answer = %q", out.Answer)
	}
	if len(out.Suggestions) != len(queryTips) {
		t.Fatalf("suggestions = %v", out.Suggestions)
	}
}

func TestAsk_SuperlativeSingleLeader(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{leaders: repo.Leaders{Rows: []repo.Row{{Name: "Luke Bangs", Value: 42}}}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "Who has scored the most goals?"})

	if fake.lastMethod != "PlayerLeaders" || fake.lastLimit != 1 || fake.lastAsc {
		t.Fatalf("call = %s limit=%d asc=%v", fake.lastMethod, fake.lastLimit, fake.lastAsc)
	}
	if out.Answer != "Luke Bangs has scored the most goals of anyone, with 42." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_TopNLeaderboard(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{leaders: repo.Leaders{Rows: []repo.Row{
		{Name: "Luke Bangs", Value: 42},
		{Name: "Steve Archer", Value: 38},
		{Name: "Tom Day", Value: 31},
	}}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "Show me the top 3 for goals"})

	if fake.lastLimit != 3 {
		t.Fatalf("limit = %d", fake.lastLimit)
	}
	want := "Luke Bangs leads with 42 goals, ahead of Steve Archer (38) and Tom Day (31)."
	if out.Answer != want {
		t.Fatalf("answer = %q", out.Answer)
	}
	if out.Visualization == nil || out.Visualization.Kind != "bar" || len(out.Visualization.Labels) != 3 {
		t.Fatalf("visualization = %+v", out.Visualization)
	}
}

func TestAsk_FewestUsesAscending(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{leaders: repo.Leaders{Rows: []repo.Row{{Name: "Tom Day", Value: 2}}}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "Who has the fewest yellow cards?"})

	if !fake.lastAsc {
		t.Fatal("expected ascending order")
	}
	if out.Answer != "Tom Day has received the fewest yellow cards of anyone, with 2." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_TeamTotal(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 52}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "How many points did the 2s get?"})

	if fake.lastMethod != "TeamTotal" || fake.lastName != "2s" || fake.lastCode != "points" {
		t.Fatalf("call = %s %s %s", fake.lastMethod, fake.lastName, fake.lastCode)
	}
	if len(fake.lastSpec.Teams) != 0 {
		t.Fatalf("subject team leaked into the filter: %v", fake.lastSpec.Teams)
	}
	if out.Answer != "The 2s has 52 points." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_ClubTotal(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 1204}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "How many goals has the club scored?"})

	if fake.lastMethod != "ClubTotal" || fake.lastCode != "goals" {
		t.Fatalf("call = %s %s", fake.lastMethod, fake.lastCode)
	}
	if out.Answer != "The club has scored 1204 goals." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_LeagueFinish(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{finishes: repo.FinishList{Rows: []repo.Finish{
		{Season: "2014/15", Position: 2, GoalDifference: 23, GoalsAgainst: 18},
		{Season: "2015/16", Position: 5, GoalDifference: -4, GoalsAgainst: 40},
	}}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "What's the 2s' highest league finish?"})
	if out.Answer != "The 2s' highest league finish is 2nd, in the 2014/15 season." {
		t.Fatalf("answer = %q", out.Answer)
	}

	out = ask(t, s, domain.AskInput{Question: "What's the 2s' lowest league finish?"})
	if out.Answer != "The 2s' lowest league finish is 5th, in the 2015/16 season." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_LeagueGoalDifference(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{finishes: repo.FinishList{Rows: []repo.Finish{
		{Season: "2014/15", Position: 2, GoalDifference: 23},
		{Season: "2015/16", Position: 5, GoalDifference: -4},
	}}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "What was the 2s' best goal difference in the league?"})
	if out.Answer != "The 2s' best goal difference was +23, in the 2014/15 season." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_LeagueDefensiveRecord(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{finishes: repo.FinishList{Rows: []repo.Finish{
		{Season: "2014/15", Position: 2, GoalsAgainst: 18},
		{Season: "2015/16", Position: 5, GoalsAgainst: 40},
	}}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "Which league season was the 2s' best defensive record?"})
	if out.Answer != "The 2s' best defensive record was 18 goals conceded, in the 2014/15 season." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_PlayedTogether(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 34}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "How many games have Luke Bangs and Steve Archer played together?"})

	if fake.lastMethod != "FixturesTogether" {
		t.Fatalf("method = %s", fake.lastMethod)
	}
	if fake.lastPair != [2]string{"Luke Bangs", "Steve Archer"} {
		t.Fatalf("pair = %v", fake.lastPair)
	}
	if out.Answer != "Luke Bangs and Steve Archer have played together in 34 fixtures." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_CombinedTotal(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 57}}
	s := newSvc(t, fake, Options{})

	out := ask(t, s, domain.AskInput{Question: "How many goals have Luke Bangs and Steve Archer scored between them?"})

	if fake.lastMethod != "CombinedTotal" || fake.lastCode != "goals" {
		t.Fatalf("call = %s %s", fake.lastMethod, fake.lastCode)
	}
	if out.Answer != "Luke Bangs and Steve Archer have scored 57 goals between them." {
		t.Fatalf("answer = %q", out.Answer)
	}
}

func TestAsk_DebugGating(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 1, Query: "MATCH (p:Player) RETURN 1"}}

	s := newSvc(t, fake, Options{Debug: true})
	out := ask(t, s, domain.AskInput{Question: "How many goals has Luke Bangs scored?"})
	if out.Debug == nil || out.Debug.Query == "" {
		t.Fatalf("debug = %+v", out.Debug)
	}

	s = newSvc(t, fake, Options{})
	out = ask(t, s, domain.AskInput{Question: "How many goals has Luke Bangs scored?"})
	if out.Debug != nil {
		t.Fatalf("debug should be withheld, got %+v", out.Debug)
	}
}

func TestAsk_UserContextBackfills(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 9}}
	s := newSvc(t, fake, Options{})

	ask(t, s, domain.AskInput{
		Question: "How many assists?",
		Context:  "asking about Steve Archer",
	})
	if fake.lastMethod != "PlayerTotal" || fake.lastName != "Steve Archer" || fake.lastCode != "assists" {
		t.Fatalf("call = %s %s %s", fake.lastMethod, fake.lastName, fake.lastCode)
	}
}

func TestAsk_HomeCueFiltersLocation(t *testing.T) {
	t.Parallel()
	fake := &fakeRepo{agg: repo.Agg{Value: 12}}
	s := newSvc(t, fake, Options{})

	ask(t, s, domain.AskInput{Question: "How many goals has Luke Bangs scored at home?"})
	if len(fake.lastSpec.Location) != 1 || fake.lastSpec.Location[0] != "Home" {
		t.Fatalf("location = %v", fake.lastSpec.Location)
	}
}
