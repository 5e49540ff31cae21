// @title         Touchline API
// @version       0.1.0
// @description   Natural language questions over a club's match history graph

package main

import (
	"context"
	"time"

	"touchline/internal/platform/config"
	"touchline/internal/platform/logger"
	phttp "touchline/internal/platform/net/http"
	"touchline/internal/platform/store"
	"touchline/internal/platform/store/neo"

	"touchline/internal/core/convo"
	"touchline/internal/modkit/repokit"
	"touchline/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	graphCfg := root.Prefix("GRAPH_") // neo4j lives under GRAPH_*

	// bring up logging early
	l := logger.Get()

	st, err := store.Open(
		context.Background(),
		neo.Opener(neo.Config{
			URI:          graphCfg.MustString("URI"),
			Username:     graphCfg.MayString("USERNAME", "neo4j"),
			Password:     graphCfg.MustString("PASSWORD"),
			Database:     graphCfg.MayString("DATABASE", ""),
			GraphLabel:   graphCfg.MustString("LABEL"),
			QueryTimeout: graphCfg.MayDuration("QUERY_TIMEOUT", 15*time.Second),
			SlowQueryMs:  graphCfg.MayInt("SLOW_MS", 500),
		}),
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail fast when the graph is unreachable
	repokit.MustGuard(context.Background(), st)

	srv := phttp.NewServer(apiCfg)

	rt := api.Mount(
		srv.Router(),
		api.Options{
			Config:        apiCfg,
			Store:         st,
			Logger:        l,
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)

	// background loops stop with the server context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// seed the catalogs so the analyzer has names before traffic lands
	if err := rt.Catalog.Refresh(ctx, "startup"); err != nil {
		l.Warn().Err(err).Msg("initial catalog refresh failed; continuing with empty catalogs")
	}
	go rt.Catalog.RunRefresher(ctx, apiCfg.MayDuration("CATALOG_REFRESH_EVERY", 10*time.Minute))
	go convo.RunSweeper(ctx, rt.Sessions,
		apiCfg.MayDuration("SESSION_SWEEP_EVERY", 5*time.Minute),
		apiCfg.MayDuration("SESSION_IDLE_FOR", convo.IdleEviction),
		l,
	)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
