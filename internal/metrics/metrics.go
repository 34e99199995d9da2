package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	serviceStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chunksup",
			Subsystem: "service",
			Name:      "starts_total",
			Help:      "Number of successful service starts.",
		}, []string{"service"},
	)
	serviceStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chunksup",
			Subsystem: "service",
			Name:      "stops_total",
			Help:      "Number of stop operations (graceful or escalated).",
		}, []string{"service"},
	)
	staleDetections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chunksup",
			Subsystem: "service",
			Name:      "stale_pid_detections_total",
			Help:      "Number of status checks that found a stale PID file.",
		}, []string{"service"},
	)
	serviceRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "chunksup",
			Subsystem: "service",
			Name:      "running",
			Help:      "Whether the service was last observed running (1) or not (0).",
		}, []string{"service"},
	)
)

// Register registers all collectors on reg. Passing nil uses the default
// registerer. AlreadyRegisteredError is tolerated so embedding callers can
// call Register more than once.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{serviceStarts, serviceStops, staleDetections, serviceRunning} {
		if err := reg.Register(c); err != nil {
			are := prometheus.AlreadyRegisteredError{}
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// Handler exposes the default gatherer for mounting at /metrics.
func Handler() http.Handler { return promhttp.Handler() }

func IncStart(service string) {
	serviceStarts.WithLabelValues(service).Inc()
	serviceRunning.WithLabelValues(service).Set(1)
}

func IncStop(service string) {
	serviceStops.WithLabelValues(service).Inc()
	serviceRunning.WithLabelValues(service).Set(0)
}

func IncStale(service string) {
	staleDetections.WithLabelValues(service).Inc()
	serviceRunning.WithLabelValues(service).Set(0)
}

func SetRunning(service string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	serviceRunning.WithLabelValues(service).Set(v)
}
