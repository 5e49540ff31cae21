package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := stderrs.New("boom")
	err := Wrap(cause, ErrorCodeGraph, "query failed")

	if got := CodeOf(err); got != ErrorCodeGraph {
		t.Fatalf("CodeOf = %d, want %d", got, ErrorCodeGraph)
	}
	if !stderrs.Is(err, cause) {
		t.Fatalf("wrapped cause lost")
	}
	if Root(err) != cause {
		t.Fatalf("Root did not reach the cause")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeAmbiguousQuestion, http.StatusBadRequest},
		{ErrorCodeEntityNotFound, http.StatusNotFound},
		{ErrorCodeInvalidMetric, http.StatusUnprocessableEntity},
		{ErrorCodeQueryTimeout, http.StatusGatewayTimeout},
		{ErrorCodeQueryConnection, http.StatusServiceUnavailable},
		{ErrorCodeQuerySyntax, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.code); got != tc.want {
			t.Errorf("HTTPStatusCode(%d) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWithOpAndFieldCopyOnWrite(t *testing.T) {
	t.Parallel()

	base := New(ErrorCodeValidation, "question too long")
	tagged := WithOp(WithField(base, "question"), "ask")

	e, ok := As(tagged)
	if !ok {
		t.Fatalf("expected *Error")
	}
	if e.Field() != "question" || e.Op() != "ask" {
		t.Fatalf("field/op = %q/%q", e.Field(), e.Op())
	}

	orig, _ := As(base)
	if orig.Field() != "" || orig.Op() != "" {
		t.Fatalf("mutators modified the original")
	}
}

func TestWireFrom(t *testing.T) {
	t.Parallel()

	w := WireFrom(EntityNotFoundf("no player %q", "Luke"))
	if w.Code != ErrorCodeEntityNotFound {
		t.Fatalf("code = %d", w.Code)
	}
	if w.Message == "" {
		t.Fatalf("empty message")
	}

	foreign := WireFrom(stderrs.New("plain"))
	if foreign.Code != ErrorCodeUnknown {
		t.Fatalf("foreign error should map to unknown, got %d", foreign.Code)
	}
}

func TestClassifyGraphErr(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), ErrorCodeQueryTimeout},
		{"syntax", stderrs.New("Neo.ClientError.Statement.SyntaxError: Invalid input"), ErrorCodeQuerySyntax},
		{"connectivity", stderrs.New("ConnectivityError: dial tcp: connection refused"), ErrorCodeQueryConnection},
		{"other", stderrs.New("weird"), ErrorCodeGraph},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CodeOf(ClassifyGraphErr(tc.err)); got != tc.want {
				t.Fatalf("code = %d, want %d", got, tc.want)
			}
		})
	}

	if ClassifyGraphErr(nil) != nil {
		t.Fatalf("nil should stay nil")
	}

	// already coded errors pass through
	coded := InvalidMetricf("nope")
	if ClassifyGraphErr(coded) != coded {
		t.Fatalf("coded error should pass through unchanged")
	}
}
