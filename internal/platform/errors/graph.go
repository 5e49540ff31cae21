package errors

// Graph store helpers for mapping neo4j driver failures to project ErrorCodes

import (
	"context"
	stderrs "errors"
	"strings"
)

// ClassifyGraphErr rewraps a raw graph store error with the closest query
// failure code. A nil err returns nil. Errors that already carry one of our
// codes pass through untouched so handlers can rewrap once at the seam
func ClassifyGraphErr(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok && e.code != ErrorCodeUnknown {
		return err
	}
	switch {
	case IsGraphTimeout(err):
		return Wrap(err, ErrorCodeQueryTimeout, "graph query timed out")
	case IsGraphSyntax(err):
		return Wrap(err, ErrorCodeQuerySyntax, "graph query rejected")
	case IsGraphConnection(err):
		return Wrap(err, ErrorCodeQueryConnection, "graph store unreachable")
	default:
		return Wrap(err, ErrorCodeGraph, "graph query failed")
	}
}

// IsGraphTimeout reports whether the error is a deadline or driver timeout
func IsGraphTimeout(err error) bool {
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}
	s := lowerRoot(err)
	return strings.Contains(s, "timeout") || strings.Contains(s, "timed out") ||
		strings.Contains(s, "deadline exceeded")
}

// IsGraphSyntax reports whether the store rejected the query text itself
// Neo4j surfaces these as Neo.ClientError.Statement.* codes
func IsGraphSyntax(err error) bool {
	s := lowerRoot(err)
	return strings.Contains(s, "syntaxerror") || strings.Contains(s, "syntax error") ||
		strings.Contains(s, "clienterror.statement")
}

// IsGraphConnection reports whether the failure is connectivity rather than the query
func IsGraphConnection(err error) bool {
	s := lowerRoot(err)
	return strings.Contains(s, "connectivityerror") || strings.Contains(s, "connection refused") ||
		strings.Contains(s, "no route to host") || strings.Contains(s, "broken pipe") ||
		strings.Contains(s, "server is unavailable") || strings.Contains(s, "pool closed")
}

// IsQueryFailure reports whether err carries any of the query failure codes
func IsQueryFailure(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeQueryTimeout, ErrorCodeQuerySyntax, ErrorCodeQueryConnection, ErrorCodeGraph:
		return true
	default:
		return false
	}
}

// Retryable reports whether the error is transient. The ask pipeline never
// retries (reads are cheap to re-issue by the user) but callers outside it
// may want the signal
func Retryable(err error) bool {
	return IsGraphTimeout(err) || IsGraphConnection(err)
}

func lowerRoot(err error) string {
	r := Root(err)
	if r == nil {
		return ""
	}
	return strings.ToLower(r.Error())
}
