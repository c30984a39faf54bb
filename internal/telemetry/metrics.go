package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maelnode",
			Name:      "messages_total",
			Help:      "Total number of inbound protocol messages, by payload type.",
		},
		[]string{"type"},
	)

	RepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maelnode",
			Name:      "replies_total",
			Help:      "Total number of replies written, by payload type.",
		},
		[]string{"type"},
	)

	HandleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "maelnode",
			Name:      "handle_duration_seconds",
			Help:      "Time spent dispatching one message, reply write included.",
			// Dispatch is in-memory plus one write; 10µs .. ~20ms.
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 12),
		},
		[]string{"type"},
	)

	DecodeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maelnode",
			Name:      "decode_errors_total",
			Help:      "Malformed input values. Decode errors are fatal, so at most 1 per process.",
		},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "maelnode",
			Name:      "build_info",
			Help:      "Build info (constant 1, labeled by version and git_sha).",
		},
		[]string{"version", "git_sha"},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "maelnode",
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(MessagesTotal, RepliesTotal, HandleDuration, DecodeErrors, buildInfo, uptime)
}

// MetricsHandler exposes /metrics. Mount it with mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SetBuildInfo should be called once at startup, e.g. with ldflags-provided values.
func SetBuildInfo(version, gitSHA string) {
	buildInfo.WithLabelValues(version, gitSHA).Set(1)
}

// ObserveHandle records one dispatched message under its payload type.
func ObserveHandle(kind string, start time.Time) {
	MessagesTotal.WithLabelValues(kind).Inc()
	HandleDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
