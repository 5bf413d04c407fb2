package web

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer wires the handler, request metrics and the /metrics endpoint
// served from reg.
func NewServer(h *Handler, reg *prometheus.Registry) *gin.Engine {
	server := gin.New()
	server.Use(gin.Recovery(), newRequestMetrics(reg).Build())
	h.RegisterRoutes(server)
	server.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	return server
}

type requestMetrics struct {
	summaryVec *prometheus.SummaryVec
	counterVec *prometheus.CounterVec
}

func newRequestMetrics(reg prometheus.Registerer) *requestMetrics {
	factory := promauto.With(reg)
	return &requestMetrics{
		summaryVec: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.99: 0.001,
				},
			},
			[]string{"method", "path", "status_code"},
		),
		counterVec: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
	}
}

func (m *requestMetrics) Build() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		m.summaryVec.WithLabelValues(ctx.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.counterVec.WithLabelValues(ctx.Request.Method, path, status).Inc()
	}
}
