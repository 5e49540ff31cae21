// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"context"

	"touchline/internal/platform/store"
)

// Queryer is the minimal read surface for graph repos
type Queryer = store.Querier

// Record is a single row keyed by return alias
type Record = store.Record

// Graph exposes a Querier without importing a driver
func Graph(_ context.Context, q store.Querier) store.Querier { return q }
