package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service instruments the analysis engines: run counters by engine and
// outcome, run duration histograms, and a dataset row gauge per session.
type Service struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.GaugeVec
}

func NewService() *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dss",
			Name:      "analysis_runs_total",
			Help:      "Analysis runs by engine and outcome.",
		}, []string{"engine", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dss",
			Name:      "analysis_duration_seconds",
			Help:      "Analysis run duration by engine.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"engine"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dss",
			Name:      "dataset_rows",
			Help:      "Transaction rows loaded per session.",
		}, []string{"session"}),
	}
	s.registry.MustRegister(
		s.runs,
		s.duration,
		s.rows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// ObserveRun records one engine invocation.
func (s *Service) ObserveRun(engine string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.runs.WithLabelValues(engine, outcome).Inc()
	s.duration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
}

// SetDatasetRows records the snapshot size for a session.
func (s *Service) SetDatasetRows(session string, n int) {
	s.rows.WithLabelValues(session).Set(float64(n))
}

// Handler serves the Prometheus exposition endpoint.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
