package catalog

import (
	"context"
	"testing"

	"touchline/internal/core/question"
)

func resolverUnderTest(t *testing.T) *Resolver {
	t.Helper()
	s := New(seededSource(), Config{}, nil)
	if err := s.Refresh(context.Background(), "explicit"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return NewResolver(s, nil)
}

func TestResolve_ExactMatchNoSuggestions(t *testing.T) {
	t.Parallel()

	r := resolverUnderTest(t)
	got := r.Resolve("luke bangs", question.EntityPlayer)

	if !got.Matched {
		t.Fatalf("expected match: %+v", got)
	}
	if got.CanonicalName != "Luke Bangs" {
		t.Fatalf("canonical = %q", got.CanonicalName)
	}
	if len(got.Suggestions) != 0 {
		t.Fatalf("exact match must carry no suggestions: %v", got.Suggestions)
	}
}

func TestResolve_TypoRanksCorrectEntryFirst(t *testing.T) {
	t.Parallel()

	r := resolverUnderTest(t)
	got := r.Resolve("Luke Bngs", question.EntityPlayer)

	if got.Matched {
		t.Fatalf("typo should not be an exact match")
	}
	if len(got.Suggestions) == 0 || got.Suggestions[0] != "Luke Bangs" {
		t.Fatalf("correct entry not ranked first: %v", got.Suggestions)
	}
}

func TestResolve_UnknownNameIsNotFound(t *testing.T) {
	t.Parallel()

	r := resolverUnderTest(t)
	got := r.Resolve("Zzyzx Quodlibet", question.EntityPlayer)

	if got.Matched || len(got.Suggestions) != 0 {
		t.Fatalf("expected a clean not-found, got %+v", got)
	}
}

func TestResolve_SuggestionCap(t *testing.T) {
	t.Parallel()

	r := resolverUnderTest(t)
	// "s" scores against nothing near-identical but close team names abound
	got := r.Resolve("4s", question.EntityTeam)

	if len(got.Suggestions) > MaxSuggestions {
		t.Fatalf("more than %d suggestions: %v", MaxSuggestions, got.Suggestions)
	}
}

func TestResolve_EmptyName(t *testing.T) {
	t.Parallel()

	r := resolverUnderTest(t)
	got := r.Resolve("   ", question.EntityPlayer)
	if got.Matched || len(got.Suggestions) != 0 {
		t.Fatalf("blank name should resolve to nothing, got %+v", got)
	}
}
