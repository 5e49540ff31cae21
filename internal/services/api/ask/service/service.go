package service

import (
	"context"

	"github.com/google/uuid"

	"touchline/internal/core/convo"
	"touchline/internal/core/question"
	"touchline/internal/platform/logger"
	"touchline/internal/platform/metrics"
	"touchline/internal/services/api/ask/domain"
	"touchline/internal/services/api/ask/repo"
	"touchline/internal/services/catalog"
)

// Service is the ask business surface
type Service interface{ domain.ServicePort }

// Options tunes orchestrator behaviour per environment
type Options struct {
	// Debug attaches query text and pipeline steps to responses
	Debug bool
	// Dataset names the graph partition answers are sourced from
	Dataset string
}

// Svc implements the ask orchestrator over the graph repository
type Svc struct {
	repo     repo.Repo
	analyzer *question.Analyzer
	resolver *catalog.Resolver
	sessions convo.Store
	log      *logger.Logger
	table    []rule
	opts     Options
}

// New builds the ask service; all collaborators are required
func New(
	r repo.Repo,
	analyzer *question.Analyzer,
	resolver *catalog.Resolver,
	sessions convo.Store,
	log *logger.Logger,
	opts Options,
) *Svc {
	if r == nil || analyzer == nil || resolver == nil || sessions == nil {
		panic("ask service: nil collaborator")
	}
	if log == nil {
		log = logger.Named("ask")
	}
	s := &Svc{
		repo:     r,
		analyzer: analyzer,
		resolver: resolver,
		sessions: sessions,
		log:      log,
		opts:     opts,
	}
	s.table = s.rules()
	return s
}

// Ask answers one free-text question
//
// Failures below the transport stay conversational: the output always
// carries an answer sentence, and the returned error is reserved for
// boundary problems the handler maps to HTTP statuses
func (s *Svc) Ask(ctx context.Context, in domain.AskInput) (domain.AskOutput, error) {
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	a := s.analyzer.Analyze(in.Question)
	if in.Context != "" {
		a = mergeAux(a, s.analyzer.Analyze(in.Context))
	}

	if c, ok, err := s.sessions.Get(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session", sessionID).Msg("session lookup failed")
	} else if ok {
		if prev, ok := c.Last(); ok {
			a = convo.Merge(a, prev)
		}
	}

	res := s.dispatch(ctx, a)
	metrics.Get().QuestionsTotal.WithLabelValues(res.Outcome()).Inc()
	if res.Err != nil {
		s.log.Warn().
			Err(res.Err).
			Str("category", string(res.Category)).
			Str("question", a.Question).
			Msg("question failed")
	}

	out := domain.AskOutput{
		Answer:        res.Answer,
		Suggestions:   res.Suggestions,
		Visualization: res.Visualization,
		SessionID:     sessionID,
	}
	if kinds := sourceKinds(res.Kind); len(kinds) > 0 {
		out.Sources = []domain.Source{{Dataset: s.opts.Dataset, Kinds: kinds}}
	}
	if s.opts.Debug {
		out.Debug = &domain.Debug{Query: res.Query, Steps: res.Steps}
	}

	turn := convo.Turn{Question: a.Question, Analysis: a, Answer: res.Answer}
	if err := s.sessions.Append(ctx, sessionID, turn); err != nil {
		s.log.Warn().Err(err).Str("session", sessionID).Msg("session append failed")
	}
	if g, ok := s.sessions.(interface{ Len() int }); ok {
		metrics.Get().SessionsActive.Set(float64(g.Len()))
	}
	return out, nil
}

// mergeAux backfills gaps in the question analysis from the optional
// free-text context field; the question itself always wins
func mergeAux(a, aux question.Analysis) question.Analysis {
	if len(a.Entities) == 0 && len(aux.Entities) > 0 {
		a.Entities = append([]question.Entity(nil), aux.Entities...)
	}
	if len(a.Metrics) == 0 && len(aux.Metrics) > 0 {
		a.Metrics = append([]string(nil), aux.Metrics...)
	}
	if a.TimeRange.IsAllTime() && !aux.TimeRange.IsAllTime() {
		a.TimeRange = aux.TimeRange
	}
	return question.Reclassify(a)
}

// sourceKinds maps a result kind to the graph node kinds it read
func sourceKinds(k Kind) []string {
	switch k {
	case KindStat, KindRanked, KindRelationship:
		return []string{"Player", "MatchDetail", "Fixture"}
	case KindFinish:
		return []string{"Team", "LeagueSeason"}
	default:
		return nil
	}
}
