package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// Metrics holds the service's prometheus collectors on a private registry
type Metrics struct {
	reg             *prometheus.Registry
	Searches        *prometheus.CounterVec
	Fallbacks       prometheus.Counter
	CacheHits       prometheus.Counter
	FeedRowsSkipped prometheus.Counter
	LookupLatency   prometheus.Histogram
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizador_searches_total",
		Help: "Searches by outcome.",
	}, []string{"endpoint", "outcome"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cotizador_lookup_fallbacks_total",
		Help: "Lookups answered with sample data after a provider failure.",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cotizador_lookup_cache_hits_total",
		Help: "Lookups answered from the response cache.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cotizador_feed_rows_skipped_total",
		Help: "Malformed supplier rows skipped while loading the feed.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cotizador_lookup_latency_seconds",
		Help:    "Time to answer a pricing lookup or search.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	r.MustRegister(searches, fallbacks, cacheHits, skipped, latency)
	return &Metrics{
		reg:             r,
		Searches:        searches,
		Fallbacks:       fallbacks,
		CacheHits:       cacheHits,
		FeedRowsSkipped: skipped,
		LookupLatency:   latency,
	}
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) observeLookup(endpoint string, start time.Time, resp *model.LookupResponse, err error) {
	m.LookupLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		m.Searches.WithLabelValues(endpoint, "error").Inc()
		return
	}
	m.Searches.WithLabelValues(endpoint, "ok").Inc()
	if resp.Fallback {
		m.Fallbacks.Inc()
	}
	if resp.Cached {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) observeSearch(start time.Time, report *model.Report, err error) {
	m.LookupLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		m.Searches.WithLabelValues("search", "error").Inc()
		return
	}
	m.Searches.WithLabelValues("search", "ok").Inc()
	if report.Lookup.Fallback {
		m.Fallbacks.Inc()
	}
	if report.Lookup.Cached {
		m.CacheHits.Inc()
	}
	m.FeedRowsSkipped.Add(float64(report.Feed.Skipped))
}
