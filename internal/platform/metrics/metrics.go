// Package metrics exposes prometheus instruments for the ask pipeline
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set holds the process-wide instruments
type Set struct {
	registry *prometheus.Registry

	// QuestionsTotal counts processed questions by outcome
	// (answered, clarification, error)
	QuestionsTotal *prometheus.CounterVec

	// GraphQuerySeconds observes graph round-trip latency per handler family
	GraphQuerySeconds *prometheus.HistogramVec

	// CatalogRefreshTotal counts catalog refreshes by trigger (ttl, explicit)
	CatalogRefreshTotal *prometheus.CounterVec

	// SessionsActive tracks live conversation contexts
	SessionsActive prometheus.Gauge
}

var (
	once sync.Once
	set  *Set
)

// Get returns the process-wide instrument set
func Get() *Set {
	once.Do(func() {
		reg := prometheus.NewRegistry()
		auto := promauto.With(reg)
		set = &Set{
			registry: reg,
			QuestionsTotal: auto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "touchline",
				Name:      "questions_total",
				Help:      "Processed questions by outcome",
			}, []string{"outcome"}),
			GraphQuerySeconds: auto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "touchline",
				Name:      "graph_query_seconds",
				Help:      "Graph query round trip latency",
				Buckets:   prometheus.DefBuckets,
			}, []string{"family"}),
			CatalogRefreshTotal: auto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "touchline",
				Name:      "catalog_refresh_total",
				Help:      "Entity catalog refreshes by trigger",
			}, []string{"trigger"}),
			SessionsActive: auto.NewGauge(prometheus.GaugeOpts{
				Namespace: "touchline",
				Name:      "sessions_active",
				Help:      "Live conversation contexts",
			}),
		}
	})
	return set
}

// Handler serves the registry for scraping
func Handler() http.Handler {
	return promhttp.HandlerFor(Get().registry, promhttp.HandlerOpts{})
}
