// Package metrics exposes scan and probe counters for Prometheus scraping.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MOYARU/apiprobe/internal/report"
)

// Recorder owns a private registry so several recorders can coexist in one
// process (tests, embedded servers).
type Recorder struct {
	registry *prometheus.Registry

	scansTotal    prometheus.Counter
	findingsTotal *prometheus.CounterVec
	panicsTotal   *prometheus.CounterVec
	requestsTotal *prometheus.CounterVec

	scanDurationSeconds  prometheus.Histogram
	probeDurationSeconds *prometheus.HistogramVec
}

func NewRecorder() (*Recorder, error) {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.scansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apiprobe_scans_total",
		Help: "Total number of completed scans",
	})
	r.findingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiprobe_findings_total",
			Help: "Findings produced, by probe, status and severity",
		},
		[]string{"probe", "status", "severity"},
	)
	r.panicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiprobe_probe_panics_total",
			Help: "Probe runs that panicked and were recovered",
		},
		[]string{"probe"},
	)
	r.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiprobe_probe_requests_total",
			Help: "Outgoing HTTP requests issued by probes",
		},
		[]string{"probe"},
	)
	r.scanDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "apiprobe_scan_duration_seconds",
		Help:    "Wall-clock scan duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
	r.probeDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apiprobe_probe_duration_seconds",
			Help:    "Probe run duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"probe"},
	)

	collectors := []prometheus.Collector{
		r.scansTotal,
		r.findingsTotal,
		r.panicsTotal,
		r.requestsTotal,
		r.scanDurationSeconds,
		r.probeDurationSeconds,
	}
	for _, c := range collectors {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveProbe records one finished probe run.
func (r *Recorder) ObserveProbe(probeID string, f report.Finding, elapsed time.Duration, requests int64) {
	r.findingsTotal.WithLabelValues(probeID, string(f.Status), string(f.Severity)).Inc()
	r.probeDurationSeconds.WithLabelValues(probeID).Observe(elapsed.Seconds())
	r.requestsTotal.WithLabelValues(probeID).Add(float64(requests))
}

// ObservePanic records a recovered probe panic.
func (r *Recorder) ObservePanic(probeID string) {
	r.panicsTotal.WithLabelValues(probeID).Inc()
}

// ObserveScan records one completed scan.
func (r *Recorder) ObserveScan(elapsed time.Duration) {
	r.scansTotal.Inc()
	r.scanDurationSeconds.Observe(elapsed.Seconds())
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
