// Package modkit provides module wiring and core deps
package modkit

import (
	phttp "touchline/internal/platform/net/http"

	"touchline/internal/modkit/repokit"
	"touchline/internal/platform/config"
	"touchline/internal/platform/logger"
)

// Module is the common surface for API modules that can mount routes and expose ports
// keep this tiny so modules stay decoupled
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)
	// Ports returns a module specific port set interface for cross wiring
	Ports() any

	// Name returns the module name
	Name() string
}

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	Graph repokit.Queryer
}
