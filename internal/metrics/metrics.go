// Package metrics holds the engine's Prometheus collectors, a trimmed
// descendant of the teacher's PrometheusMetrics: the dozens of
// decoder/noise-floor/DX-cluster gauges don't apply here, but the
// shape — a struct of promauto-registered collectors on an owned
// Registry, one field per concern — is identical.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine holds every collector the supervisor and its workers update.
type Engine struct {
	Registry *prometheus.Registry

	PSDPublishes        prometheus.Counter
	PSDPublishLatency   prometheus.Histogram
	HardwareRecoveries  prometheus.Counter
	AudioFramesSent     prometheus.Counter
	AudioFramesDropped  prometheus.Counter
	ControlReconnects   prometheus.Counter
	AcquisitionTimeouts prometheus.Counter
}

// New builds an Engine with its own private Registry (the teacher
// registers onto the default registry only for its push-gateway path;
// an owned Registry is preferable here since this engine isn't a
// singleton web server).
func New() *Engine {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Engine{
		Registry: reg,
		PSDPublishes: factory.NewCounter(prometheus.CounterOpts{
			Name: "rf_engine_psd_publishes_total",
			Help: "Number of PSD messages published to the control plane.",
		}),
		PSDPublishLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rf_engine_psd_publish_latency_seconds",
			Help:    "Wall time from acquisition completion to PSD publish.",
			Buckets: prometheus.DefBuckets,
		}),
		HardwareRecoveries: factory.NewCounter(prometheus.CounterOpts{
			Name: "rf_engine_hardware_recoveries_total",
			Help: "Number of times the hardware recovery path ran.",
		}),
		AudioFramesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "rf_engine_audio_frames_sent_total",
			Help: "Number of audio frames successfully streamed to the gateway.",
		}),
		AudioFramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "rf_engine_audio_frames_dropped_total",
			Help: "Number of audio frames dropped due to a gateway connect/write failure.",
		}),
		ControlReconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "rf_engine_control_reconnects_total",
			Help: "Number of control-link watchdog-triggered reconnects.",
		}),
		AcquisitionTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "rf_engine_acquisition_timeouts_total",
			Help: "Number of supervisor acquisition waits that hit the 5s timeout.",
		}),
	}
}
