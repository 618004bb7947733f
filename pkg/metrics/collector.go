package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helmcode/nifty-ai/pkg/model"
)

const namespace = "nifty_ai"

// Fetch outcomes recorded by ObserveFetch.
const (
	ResultSuccess     = "success"
	ResultError       = "error"
	ResultBusy        = "busy"
	ResultRateLimited = "rate_limited"
)

// Collector holds the metrics exported by the server.
type Collector struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	inFlight      prometheus.Gauge
	blocks        *prometheus.CounterVec
	probabilities prometheus.Histogram
	sources       prometheus.Histogram
}

// NewCollector registers the collectors on a fresh registry, together with
// the standard Go and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_fetches_total",
			Help:      "Analysis fetch attempts by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_fetch_duration_seconds",
			Help:      "Time spent waiting for the Gemini API.",
			Buckets:   []float64{5, 10, 20, 30, 60, 90, 120, 180, 300},
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "analysis_fetch_in_flight",
			Help:      "1 while a fetch is outstanding.",
		}),
		blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_blocks_total",
			Help:      "Render blocks produced, by kind.",
		}, []string{"kind"}),
		probabilities: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probability_records",
			Help:      "Probability records found per document.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6},
		}),
		sources: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sources",
			Help:      "Deduplicated sources per document.",
			Buckets:   prometheus.LinearBuckets(0, 5, 6),
		}),
	}

	reg.MustRegister(
		c.fetches,
		c.fetchDuration,
		c.inFlight,
		c.blocks,
		c.probabilities,
		c.sources,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// FetchStarted marks a fetch as in flight and returns a function that
// records its outcome.
func (c *Collector) FetchStarted() func(err error) {
	start := time.Now()
	c.inFlight.Set(1)
	return func(err error) {
		c.inFlight.Set(0)
		c.fetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			c.fetches.WithLabelValues(ResultError).Inc()
			return
		}
		c.fetches.WithLabelValues(ResultSuccess).Inc()
	}
}

// FetchRejected counts a fetch that was refused before reaching the backend.
func (c *Collector) FetchRejected(result string) {
	c.fetches.WithLabelValues(result).Inc()
}

// ObserveDocument records the shape of a rendered document.
func (c *Collector) ObserveDocument(doc *model.Document) {
	for _, b := range doc.Blocks {
		c.blocks.WithLabelValues(b.Kind.String()).Inc()
	}
	c.probabilities.Observe(float64(len(doc.Probabilities)))
	c.sources.Observe(float64(len(doc.Sources)))
}
