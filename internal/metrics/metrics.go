// Package metrics exposes feeder activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
)

const namespace = "dogfeeder"

// Metrics holds the feeder collectors on a private registry.
// It implements feeder.Observer and notify.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	slotsFired    *prometheus.CounterVec
	slotsMissed   *prometheus.CounterVec
	feeds         prometheus.Counter
	lastFeed      prometheus.Gauge
	notifications *prometheus.CounterVec
	active        prometheus.Gauge
	firstWeight   prometheus.Gauge
	lastWeight    prometheus.Gauge
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, on a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		slotsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_fired_total",
			Help:      "Feeding slots whose edge window was hit.",
		}, []string{"slot"}),
		slotsMissed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_missed_total",
			Help:      "Feeding slots first seen after their edge window closed.",
		}, []string{"slot"}),
		feeds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feeds_total",
			Help:      "Completed dispenser profiles.",
		}),
		lastFeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_feed_timestamp_seconds",
			Help:      "Unix time of the last completed dispenser profile.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification delivery attempts by sender, kind and result.",
		}, []string{"sender", "kind", "result"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "measurement_active",
			Help:      "1 while a measurement window is open.",
		}),
		firstWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "first_weight_grams",
			Help:      "Bowl weight at the start of the last measurement window.",
		}),
		lastWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_weight_grams",
			Help:      "Most recent bowl weight sample.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.slotsFired,
		m.slotsMissed,
		m.feeds,
		m.lastFeed,
		m.notifications,
		m.active,
		m.firstWeight,
		m.lastWeight,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SlotFired counts a fired slot.
func (m *Metrics) SlotFired(slot feeder.Slot, _ time.Time) {
	m.slotsFired.WithLabelValues(slot.String()).Inc()
}

// SlotMissed counts a missed slot.
func (m *Metrics) SlotMissed(slot feeder.Slot, _ time.Time) {
	m.slotsMissed.WithLabelValues(slot.String()).Inc()
}

// Dispensed counts a completed dispenser profile.
func (m *Metrics) Dispensed(at time.Time) {
	m.feeds.Inc()
	m.lastFeed.Set(float64(at.Unix()))
}

// MeasurementChanged updates the measurement gauges. Weight gauges keep
// their last values after the window closes.
func (m *Metrics) MeasurementChanged(s feeder.MeasurementState) {
	if s.Phase != feeder.PhaseActive {
		m.active.Set(0)
		return
	}
	m.active.Set(1)
	m.firstWeight.Set(s.FirstWeight)
	m.lastWeight.Set(s.LastWeight)
}

// NotificationSent counts a delivery attempt.
func (m *Metrics) NotificationSent(sender string, kind feeder.ReadingKind, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(sender, string(kind), result).Inc()
}
