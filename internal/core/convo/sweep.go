package convo

import (
	"context"
	"time"

	"touchline/internal/platform/logger"
)

// RunSweeper periodically evicts idle sessions until ctx is done
// zero or negative intervals fall back to sane defaults
func RunSweeper(ctx context.Context, s Store, every, idleFor time.Duration, log *logger.Logger) {
	if every <= 0 {
		every = 5 * time.Minute
	}
	if idleFor <= 0 {
		idleFor = IdleEviction
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			n, err := s.Sweep(ctx, idleFor)
			if err != nil {
				log.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int("evicted", n).Msg("session sweep")
			}
		}
	}
}
