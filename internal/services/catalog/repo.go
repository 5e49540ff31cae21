package catalog

import (
	"context"
	"fmt"

	"touchline/internal/core/question"
	"touchline/internal/modkit/repokit"
	perr "touchline/internal/platform/errors"
	"touchline/internal/platform/store"
	pstrings "touchline/internal/platform/strings"
)

// graphSource reads canonical names from the graph, scoped to the
// dataset partition label
type graphSource struct {
	q repokit.Queryer
}

// NewGraphSource binds a Source to the graph Querier
func NewGraphSource() repokit.Binder[Source] {
	return repokit.BindFunc[Source](func(q repokit.Queryer) Source {
		return &graphSource{q: q}
	})
}

// queries per partition; %s is the validated graph label, names bind
// nothing so the parameter map stays empty
var partitionQueries = map[question.EntityType]string{
	question.EntityPlayer:     "MATCH (p:Player:%s) WHERE p.name IS NOT NULL RETURN DISTINCT p.name AS name ORDER BY name",
	question.EntityTeam:       "MATCH (t:Team:%s) WHERE t.name IS NOT NULL RETURN DISTINCT t.name AS name ORDER BY name",
	question.EntityOpposition: "MATCH (f:Fixture:%s) WHERE f.opposition IS NOT NULL RETURN DISTINCT f.opposition AS name ORDER BY name",
	question.EntityLeague:     "MATCH (l:League:%s) WHERE l.name IS NOT NULL RETURN DISTINCT l.name AS name ORDER BY name",
}

// List implements Source
func (g *graphSource) List(ctx context.Context, t question.EntityType) ([]string, error) {
	tmpl, ok := partitionQueries[t]
	if !ok {
		return nil, perr.InvalidArgf("unknown catalog partition %q", t)
	}
	recs, err := g.q.ExecuteQuery(ctx, fmt.Sprintf(tmpl, g.q.GraphLabel()), map[string]any{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		if n := store.StrOf(r, "name"); n != "" {
			names = append(names, n)
		}
	}
	return pstrings.Dedupe(names), nil
}
