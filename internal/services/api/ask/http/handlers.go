// Package http provides http transport for ask
package http

import (
	stdhttp "net/http"

	"touchline/internal/modkit/httpkit"
	"touchline/internal/services/api/ask/domain"
)

// SessionHeader carries the conversation id when the body omits it
const SessionHeader = "X-Session-ID"

// Register mounts ask endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.AskInput](r, "/", h.ask)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Answer a free-text question about the club's match history
// @Tags Ask
// @Accept json
// @Produce json
// @Param payload body domain.AskInput true "Question"
// @Success 200 {object} domain.AskOutput "ok"
// @Router /ask [post]
func (h *handlers) ask(r *stdhttp.Request, in domain.AskInput) (any, error) {
	if in.SessionID == "" {
		in.SessionID = r.Header.Get(SessionHeader)
	}
	return h.svc.Ask(r.Context(), in)
}
