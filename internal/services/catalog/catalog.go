// Package catalog maintains type-partitioned entity catalogs (players,
// teams, oppositions, leagues) refreshed from the graph store, and
// resolves raw name strings against them
package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"touchline/internal/core/question"
	"touchline/internal/platform/logger"
	"touchline/internal/platform/metrics"
	ptime "touchline/internal/platform/time"
)

// Types lists every catalog partition in refresh order
var Types = []question.EntityType{
	question.EntityPlayer,
	question.EntityTeam,
	question.EntityOpposition,
	question.EntityLeague,
}

// Source lists canonical entity names for one partition
type Source interface {
	List(ctx context.Context, t question.EntityType) ([]string, error)
}

// snapshot maps partition to canonical names; replaced atomically so
// readers never block on a refresh
type snapshot map[question.EntityType][]string

// Service holds the catalogs and serves reads from the latest snapshot
type Service struct {
	src   Source
	clock ptime.Clock
	ttl   time.Duration
	log   *logger.Logger

	snap      atomic.Pointer[snapshot]
	refreshMu sync.Mutex // single refresh in flight
	fetchedAt atomic.Int64
}

// Config tunes the catalog service
type Config struct {
	// TTL is how stale a snapshot may get before the refresher reloads it
	TTL time.Duration
	// Clock defaults to wall time
	Clock ptime.Clock
}

// New builds a Service over src; call Refresh (or RunRefresher) to
// populate it
func New(src Source, cfg Config, log *logger.Logger) *Service {
	if src == nil {
		panic("catalog: nil source")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = ptime.Wall{}
	}
	s := &Service{src: src, clock: cfg.Clock, ttl: cfg.TTL, log: log}
	empty := snapshot{}
	s.snap.Store(&empty)
	return s
}

// Entries implements question.Catalogs from the current snapshot
// never blocks on a refresh; staleness up to the TTL is tolerated
func (s *Service) Entries(t question.EntityType) []string {
	return (*s.snap.Load())[t]
}

// Stale reports whether the snapshot has outlived the TTL
func (s *Service) Stale() bool {
	return s.clock.Now().Unix()-s.fetchedAt.Load() >= int64(s.ttl/time.Second)
}

// Refresh reloads every partition and swaps the snapshot in one step
// trigger names the cause for metrics ("ttl" or "explicit")
func (s *Service) Refresh(ctx context.Context, trigger string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	next := make(snapshot, len(Types))
	for _, t := range Types {
		names, err := s.src.List(ctx, t)
		if err != nil {
			// keep serving the old snapshot rather than a partial one
			return err
		}
		next[t] = names
	}
	s.snap.Store(&next)
	s.fetchedAt.Store(s.clock.Now().Unix())
	metrics.Get().CatalogRefreshTotal.WithLabelValues(trigger).Inc()
	if s.log != nil {
		s.log.Debug().
			Int("players", len(next[question.EntityPlayer])).
			Int("teams", len(next[question.EntityTeam])).
			Int("oppositions", len(next[question.EntityOpposition])).
			Int("leagues", len(next[question.EntityLeague])).
			Str("trigger", trigger).
			Msg("catalog refreshed")
	}
	return nil
}

// RunRefresher reloads stale snapshots until ctx is done
func (s *Service) RunRefresher(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if !s.Stale() {
				continue
			}
			if err := s.Refresh(ctx, "ttl"); err != nil && s.log != nil {
				s.log.Warn().Err(err).Msg("catalog refresh failed")
			}
		}
	}
}
