package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender"
)

// Metrics is a docrender.Observer backed by prometheus collectors.
type Metrics struct {
	renderDuration   prometheus.Histogram
	renders          *prometheus.CounterVec
	logoFetches      *prometheus.CounterVec
	fragmentDuration *prometheus.HistogramVec
}

var _ docrender.Observer = (*Metrics)(nil)

// NewMetrics registers the collectors on reg. A nil reg creates unregistered
// collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docrender_render_duration_seconds",
			Help:    "Document render duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docrender_renders_total",
			Help: "Total number of document renders",
		}, []string{"status"}),
		logoFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docrender_logo_fetch_total",
			Help: "Logo resolutions by outcome",
		}, []string{"outcome"}),
		fragmentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docrender_fragment_duration_seconds",
			Help:    "Per-fragment pipeline duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"fragment"}),
	}
}

func (m *Metrics) FragmentRendered(fragment string, d time.Duration, _ error) {
	m.fragmentDuration.WithLabelValues(fragment).Observe(d.Seconds())
}

func (m *Metrics) LogoFetched(_ string, outcome string) {
	m.logoFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RenderCompleted(d time.Duration, _ int, err error) {
	m.renderDuration.Observe(d.Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.renders.WithLabelValues(status).Inc()
}
