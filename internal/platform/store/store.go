// Package store provides a unified interface to the graph backend
package store

import (
	"context"
	"errors"
	"fmt"

	"touchline/internal/platform/logger"
)

// Record is one row returned by the graph store, keyed by return alias
type Record map[string]any

// Querier is the read surface repos use for graph queries
// Cypher text must use named $params only; GraphLabel is the dataset
// partition every query scopes on
type Querier interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]Record, error)
	GraphLabel() string
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Store is the facade over the graph backend
// zero value is safe but does nothing
type Store struct {
	// Log is the logger used by subclients
	Log logger.Logger

	// Graph is the property graph seam, nil when disabled
	Graph Querier
}

// Option mutates a Store during Open
type Option func(*Store) error

// WithLogger attaches a logger used by subclients
func WithLogger(l logger.Logger) Option {
	return func(s *Store) error {
		s.Log = l
		return nil
	}
}

// Opener is the seam main wires a concrete graph client through
type Opener func(ctx context.Context, s *Store) (Querier, error)

// Open constructs a Store with the given graph opener
func Open(ctx context.Context, open Opener, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	if open != nil {
		g, err := open(ctx, s)
		if err != nil {
			return nil, err
		}
		s.Graph = g
	}
	return s, nil
}

// Guard verifies all configured seams the Store knows about
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	if s.Graph != nil {
		if p, ok := any(s.Graph).(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("graph: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes all initialized backends gracefully
// nil backends are ignored
func (s *Store) Close(ctx context.Context) error {
	var errs []error
	if c, ok := s.Graph.(interface{ Close(context.Context) error }); ok {
		if e := c.Close(ctx); e != nil {
			errs = append(errs, e)
		}
	}
	return errors.Join(errs...)
}
