package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-postpress/pkg/interfaces"
)

const namespace = "postpress"

// Metrics holds the collectors of one service instance on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	PublishTotal    *prometheus.CounterVec
	PublishDuration prometheus.Histogram
	NotifyTotal     *prometheus.CounterVec
	CorruptIndex    prometheus.Counter
}

// New registers the postpress collectors plus the Go and process collectors
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Publish attempts by outcome",
		}, []string{"outcome"}),
		PublishDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Time spent publishing a post",
			Buckets:   prometheus.DefBuckets,
		}),
		NotifyTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_total",
			Help:      "Publish notifications by outcome",
		}, []string{"outcome"}),
		CorruptIndex: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_corrupt_total",
			Help:      "Post index loads that discarded an unreadable document",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePublish records a publish outcome and its duration.
func (m *Metrics) ObservePublish(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PublishTotal.WithLabelValues(outcome).Inc()
	m.PublishDuration.Observe(elapsed.Seconds())
}

// ObserveNotify records the result of a background notification.
func (m *Metrics) ObserveNotify(_ interfaces.PublishEvent, err error) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if err != nil {
		outcome = "failed"
	}
	m.NotifyTotal.WithLabelValues(outcome).Inc()
}

// ObserveCorruptIndex counts a discarded index document.
func (m *Metrics) ObserveCorruptIndex(error) {
	if m == nil {
		return
	}
	m.CorruptIndex.Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
