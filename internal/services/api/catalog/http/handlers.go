// Package http provides http transport for the entity catalogs
package http

import (
	stdhttp "net/http"

	"touchline/internal/core/question"
	"touchline/internal/modkit/httpkit"
	"touchline/internal/services/catalog"
)

// Register mounts catalog endpoints on the given router
func Register(r httpkit.Router, s *catalog.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/players", h.list(question.EntityPlayer))
	httpkit.Get(r, "/teams", h.list(question.EntityTeam))
	httpkit.Get(r, "/oppositions", h.list(question.EntityOpposition))
	httpkit.Get(r, "/leagues", h.list(question.EntityLeague))
	httpkit.Post(r, "/refresh", h.refresh)
}

type handlers struct{ svc *catalog.Service }

// ListResponse is one catalog listing
type ListResponse struct {
	Entries []string `json:"entries"`
	Count   int      `json:"count" example:"42"`
}

// RefreshResponse acknowledges a reload
type RefreshResponse struct {
	Status string `json:"status" example:"ok"`
}

// @Summary List known entity names of one kind
// @Tags Catalog
// @Produce json
// @Success 200 {object} ListResponse "ok"
// @Router /catalog/players [get]
func (h *handlers) list(t question.EntityType) func(*stdhttp.Request) (any, error) {
	return func(_ *stdhttp.Request) (any, error) {
		entries := h.svc.Entries(t)
		return ListResponse{Entries: entries, Count: len(entries)}, nil
	}
}

// @Summary Reload every catalog from the graph
// @Tags Catalog
// @Produce json
// @Success 200 {object} RefreshResponse "ok"
// @Router /catalog/refresh [post]
func (h *handlers) refresh(r *stdhttp.Request) (any, error) {
	if err := h.svc.Refresh(r.Context(), "explicit"); err != nil {
		return nil, err
	}
	return RefreshResponse{Status: "ok"}, nil
}
