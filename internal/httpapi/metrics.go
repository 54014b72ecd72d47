package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// Metrics holds every Prometheus collector the dashboard exposes,
// registered against its own registry rather than the global default
// so a process (or a test) can build more than one Metrics instance.
type Metrics struct {
	registry      *prometheus.Registry
	LatestScore   prometheus.Gauge
	CalculateTime prometheus.Histogram
	RunsByStatus  *prometheus.CounterVec
	ActiveWSConns prometheus.Gauge
}

// NewMetrics builds and registers a fresh metrics registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LatestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aurorabmi_latest_score",
			Help: "Most recently computed BMI score (0-100).",
		}),
		CalculateTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aurorabmi_calculate_duration_seconds",
			Help:    "Wall-clock duration of bmi.Calculate invocations.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		RunsByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aurorabmi_runs_total",
			Help: "Total pipeline runs by resulting baseline status.",
		}, []string{"status"}),
		ActiveWSConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aurorabmi_ws_connections",
			Help: "Currently connected dashboard websocket clients.",
		}),
	}

	m.registry.MustRegister(m.LatestScore, m.CalculateTime, m.RunsByStatus, m.ActiveWSConns)
	return m
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
