// Package metrics exports Prometheus counters and histograms for the
// reasoning pipeline and the HTTP surface.
package metrics

import (
	"net/http"

	"techsupport-agent/reasoning"
	"techsupport-agent/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "techsupport"

// Recorder implements reasoning.Observer.
type Recorder struct {
	gatherer prometheus.Gatherer

	queries     *prometheus.CounterVec
	symptoms    *prometheus.CounterVec
	duration    prometheus.Histogram
	candidates  prometheus.Histogram
	accepted    prometheus.Histogram
	rateLimited prometheus.Counter
}

// NewRecorder registers the collectors on reg. A nil reg gets a fresh
// registry, so tests and multiple servers never collide.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reasoning",
			Name:      "queries_total",
			Help:      "Questions answered, by type of the top answer",
		}, []string{"outcome"}),
		symptoms: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reasoning",
			Name:      "symptoms_detected_total",
			Help:      "Symptoms detected across all questions",
		}, []string{"symptom"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reasoning",
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent answering one question",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		candidates: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reasoning",
			Name:      "kb_candidates",
			Help:      "Knowledge-base candidates above the match threshold",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		accepted: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reasoning",
			Name:      "kb_accepted",
			Help:      "Knowledge-base candidates kept by the relevance filter",
			Buckets:   []float64{0, 1, 2},
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// Observe records one pipeline run.
func (r *Recorder) Observe(o reasoning.Observation) {
	r.queries.WithLabelValues(string(o.Outcome)).Inc()
	for _, s := range o.Symptoms {
		r.symptoms.WithLabelValues(s).Inc()
	}
	r.duration.Observe(o.Duration.Seconds())
	if o.Outcome != types.AnswerEmergency {
		r.candidates.Observe(float64(o.Candidates))
		r.accepted.Observe(float64(o.Accepted))
	}
}

// RateLimited counts a rejected request.
func (r *Recorder) RateLimited() {
	r.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
