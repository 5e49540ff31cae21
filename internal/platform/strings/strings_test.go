package strings

import "testing"

func TestCollapseSpaces(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"Luke Bangs has  scored 10 goals", "Luke Bangs has scored 10 goals"},
		{"  padded  ", "padded"},
		{"", ""},
		{"one", "one"},
	}
	for _, tc := range cases {
		if got := CollapseSpaces(tc.in); got != tc.want {
			t.Errorf("CollapseSpaces(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	got := Dedupe([]string{"goals", "assists", "goals"})
	if len(got) != 2 || got[0] != "goals" || got[1] != "assists" {
		t.Fatalf("Dedupe = %v", got)
	}
}

func TestMustPrefix(t *testing.T) {
	t.Parallel()

	if got := MustPrefix(" ask/ "); got != "/ask" {
		t.Fatalf("MustPrefix = %q", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for empty prefix")
		}
	}()
	MustPrefix("  ")
}
