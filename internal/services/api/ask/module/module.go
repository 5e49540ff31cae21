// Package module wires ask into the API using modkit
package module

import (
	"net/http"

	"touchline/internal/core/convo"
	"touchline/internal/core/question"
	modkit "touchline/internal/modkit"
	"touchline/internal/modkit/httpkit"
	"touchline/internal/platform/logger"
	str "touchline/internal/platform/strings"
	"touchline/internal/services/api/ask/domain"
	askhttp "touchline/internal/services/api/ask/http"
	askrepo "touchline/internal/services/api/ask/repo"
	asksvc "touchline/internal/services/api/ask/service"
	"touchline/internal/services/catalog"
)

// Ports is the injected collaborator set the ask module depends on;
// the composition root owns the catalog and session store so the
// refresher and sweeper can share them
type Ports struct {
	Catalog  *catalog.Service
	Resolver *catalog.Resolver
	Sessions convo.Store
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc domain.ServicePort
}

// New constructs an ask module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("ask"), modkit.WithPrefix("/ask")}, opts...)...)

	p, ok := b.Ports.(Ports)
	if !ok || p.Catalog == nil || p.Resolver == nil || p.Sessions == nil {
		panic("ask module: catalog, resolver and session store ports are required")
	}

	repo := askrepo.NewGraph().Bind(deps.Graph)
	svc := asksvc.New(
		repo,
		question.NewAnalyzer(p.Catalog),
		p.Resolver,
		p.Sessions,
		logger.Named("ask"),
		asksvc.Options{
			Debug:   deps.Cfg.MayString("ENV", "production") != "production",
			Dataset: deps.Graph.GraphLabel(),
		},
	)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptAskPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		askhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the ask service port for cross module wiring
func (m *Module) Ports() any { return m.ports }

// adaptAskPort exposes the service as a domain.ServicePort bundle
type adaptAskPort struct{ svc domain.ServicePort }

// Asker returns the ask port
func (a adaptAskPort) Asker() domain.ServicePort { return a.svc }
