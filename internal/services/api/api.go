// Package api provides the HTTP API for the application
package api

import (
	"touchline/internal/platform/config"
	"touchline/internal/platform/logger"
	"touchline/internal/platform/metrics"
	phttp "touchline/internal/platform/net/http"
	"touchline/internal/platform/store"

	"touchline/internal/modkit"
	"touchline/internal/modkit/httpkit"
	"touchline/internal/modkit/module"
	"touchline/internal/modkit/swaggerkit"

	"touchline/internal/core/convo"
	askmod "touchline/internal/services/api/ask/module"
	catalogmod "touchline/internal/services/api/catalog/module"
	metamod "touchline/internal/services/api/meta/module"
	"touchline/internal/services/catalog"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Logger        *logger.Logger
	EnableSwagger bool
}

// Runtime exposes the long-lived collaborators main keeps running:
// the catalog refresher and the conversation sweeper loop over these
type Runtime struct {
	Catalog  *catalog.Service
	Sessions *convo.MemoryStore
}

// Mount mounts the API service onto the given router and returns the
// shared runtime collaborators
func Mount(r phttp.Router, opt Options) *Runtime {
	deps := modkit.Deps{
		Log:   *opt.Logger,
		Cfg:   opt.Config,
		Graph: opt.Store.Graph,
	}

	// the catalog and session store are shared: the ask module reads
	// them per request, main's background loops keep them fresh
	cats := catalog.New(
		catalog.NewGraphSource().Bind(deps.Graph),
		catalog.Config{TTL: opt.Config.MayDuration("CATALOG_TTL", 0)},
		opt.Logger,
	)
	resolver := catalog.NewResolver(cats, nil)
	sessions := convo.NewMemoryStore(nil)

	mods := []module.Module{
		metamod.New(deps),
		catalogmod.New(deps, modkit.WithPorts(catalogmod.Ports{Catalog: cats})),
		askmod.New(deps, modkit.WithPorts(askmod.Ports{
			Catalog:  cats,
			Resolver: resolver,
			Sessions: sessions,
		})),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)

		for _, m := range mods {
			// register each module's ports under its own name
			module.Register(m.Name(), m.Ports())

			m.MountRoutes(api)
		}
	})

	// prometheus scrape endpoint, outside the versioned prefix
	r.Handle("/metrics", metrics.Handler())

	return &Runtime{Catalog: cats, Sessions: sessions}
}
