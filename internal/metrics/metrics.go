package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/radar/internal/contracts"
)

const namespace = "radar"

// Registry holds all Prometheus collectors of the screening engine.
// Methods are nil-safe so callers can run without metrics.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Registry struct {
	reg *prometheus.Registry

	ScansTotal      *prometheus.CounterVec
	ScanDuration    *prometheus.HistogramVec
	ActiveScans     prometheus.Gauge
	Classifications *prometheus.CounterVec
	ECandidates     prometheus.Counter
	Insufficient    prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates a registry with its own prometheus.Registry
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Total number of scans by result",
			},
			[]string{"result"},
		),

		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Duration of a full scan in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),

		ActiveScans: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_scans",
				Help:      "Number of scans currently running",
			},
		),

		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Total number of classified securities by tier",
			},
			[]string{"tier"},
		),

		ECandidates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "e_candidates_total",
				Help:      "Total number of securities flagged as E-candidates",
			},
		),

		Insufficient: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insufficient_data_total",
				Help:      "Total number of snapshots rejected by the completeness gate",
			},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "API request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	r.reg.MustRegister(
		r.ScansTotal,
		r.ScanDuration,
		r.ActiveScans,
		r.Classifications,
		r.ECandidates,
		r.Insufficient,
		r.HTTPRequests,
		r.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// ScanStarted marks a scan as running; call the returned func when it ends
func (r *Registry) ScanStarted() func() {
	if r == nil {
		return func() {}
	}
	r.ActiveScans.Inc()
	return r.ActiveScans.Dec
}

// ObserveScan records the outcome of one scan
func (r *Registry) ObserveScan(source string, result *contracts.ScanResult, err error, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.ScanDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if err != nil {
		r.ScansTotal.WithLabelValues("error").Inc()
		return
	}
	r.ScansTotal.WithLabelValues("success").Inc()

	for tier, n := range result.TierCounts {
		r.Classifications.WithLabelValues(tier).Add(float64(n))
	}
	r.ECandidates.Add(float64(result.ECandidates))
	r.Insufficient.Add(float64(len(result.Insufficient)))
}

// ObserveHTTP records one API request
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
