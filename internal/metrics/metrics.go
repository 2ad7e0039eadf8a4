package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	HealthChecks        *prometheus.CounterVec
	HealthCheckDuration *prometheus.HistogramVec
	DependencyUp        *prometheus.GaugeVec
	StorageUploads      *prometheus.CounterVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HealthChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "health_checks_total",
			Help: "Total number of health probes answered, by probe and result.",
		}, []string{"probe", "result"}),

		HealthCheckDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "health_check_duration_seconds",
			Help:    "Time spent verifying a dependency for a health probe.",
			Buckets: prometheus.DefBuckets,
		}, []string{"probe"}),

		DependencyUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dependency_up",
			Help: "1 when the last background check of the dependency succeeded, 0 otherwise.",
		}, []string{"dependency"}),

		StorageUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storage_uploads_total",
			Help: "Total number of static asset uploads, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.HealthChecks,
		m.HealthCheckDuration,
		m.DependencyUp,
		m.StorageUploads,
	)

	return m
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// ProbeHook returns the callback expected by service.HealthService.
// Centralises the prometheus calls so the service stays import-free.
func (m *Metrics) ProbeHook() func(probe string, healthy bool, took time.Duration) {
	return func(probe string, healthy bool, took time.Duration) {
		m.HealthChecks.WithLabelValues(probe, result(healthy)).Inc()
		if took > 0 {
			m.HealthCheckDuration.WithLabelValues(probe).Observe(took.Seconds())
		}
	}
}

// DependencyHook returns the callback expected by worker.DependencyWatcher.
func (m *Metrics) DependencyHook() func(dependency string, up bool) {
	return func(dependency string, up bool) {
		v := 0.0
		if up {
			v = 1
		}
		m.DependencyUp.WithLabelValues(dependency).Set(v)
	}
}

// UploadHook returns the callback expected by worker.UploadPool.
func (m *Metrics) UploadHook() func(ok bool) {
	return func(ok bool) {
		m.StorageUploads.WithLabelValues(result(ok)).Inc()
	}
}
