package catalog

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"touchline/internal/core/question"
	ptime "touchline/internal/platform/time"
)

type fakeSource struct {
	lists map[question.EntityType][]string
	err   error
	calls atomic.Int32
}

func (f *fakeSource) List(_ context.Context, t question.EntityType) ([]string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.lists[t], nil
}

func seededSource() *fakeSource {
	return &fakeSource{lists: map[question.EntityType][]string{
		question.EntityPlayer:     {"Luke Bangs", "Steve Archer", "Tom Day"},
		question.EntityTeam:       {"1s", "2s", "3s"},
		question.EntityOpposition: {"Weston Rovers"},
		question.EntityLeague:     {"Division Three"},
	}}
}

func TestService_EmptyUntilRefreshed(t *testing.T) {
	t.Parallel()

	s := New(seededSource(), Config{}, nil)
	if got := s.Entries(question.EntityPlayer); len(got) != 0 {
		t.Fatalf("expected empty snapshot before refresh, got %v", got)
	}
}

func TestService_RefreshPopulatesAllPartitions(t *testing.T) {
	t.Parallel()

	src := seededSource()
	s := New(src, Config{}, nil)
	if err := s.Refresh(context.Background(), "explicit"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if got := s.Entries(question.EntityPlayer); !reflect.DeepEqual(got, src.lists[question.EntityPlayer]) {
		t.Fatalf("players = %v", got)
	}
	if got := s.Entries(question.EntityLeague); !reflect.DeepEqual(got, src.lists[question.EntityLeague]) {
		t.Fatalf("leagues = %v", got)
	}
}

func TestService_FailedRefreshKeepsOldSnapshot(t *testing.T) {
	t.Parallel()

	src := seededSource()
	s := New(src, Config{}, nil)
	if err := s.Refresh(context.Background(), "explicit"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	src.err = errors.New("graph down")
	if err := s.Refresh(context.Background(), "ttl"); err == nil {
		t.Fatalf("expected refresh error")
	}
	if got := s.Entries(question.EntityTeam); len(got) != 3 {
		t.Fatalf("old snapshot lost: %v", got)
	}
}

func TestService_Stale(t *testing.T) {
	t.Parallel()

	clock := &ptime.Fixed{T: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	s := New(seededSource(), Config{TTL: 10 * time.Minute, Clock: clock}, nil)

	if !s.Stale() {
		t.Fatalf("unrefreshed snapshot should be stale")
	}
	if err := s.Refresh(context.Background(), "explicit"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if s.Stale() {
		t.Fatalf("fresh snapshot reported stale")
	}
	clock.Advance(11 * time.Minute)
	if !s.Stale() {
		t.Fatalf("snapshot should be stale after TTL")
	}
}

func TestService_ReadsNeverBlockDuringRefresh(t *testing.T) {
	t.Parallel()

	src := seededSource()
	s := New(src, Config{}, nil)
	_ = s.Refresh(context.Background(), "explicit")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = s.Refresh(context.Background(), "ttl")
		}
	}()
	for i := 0; i < 1000; i++ {
		if got := s.Entries(question.EntityPlayer); len(got) != 3 {
			t.Fatalf("read saw partial snapshot: %v", got)
		}
	}
	<-done
}
