package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "task_assistant"

// Metrics holds the Prometheus collectors for the chat pipeline and the
// push hub. A nil *Metrics is valid and records nothing.
type Metrics struct {
	messages          *prometheus.CounterVec
	operations        *prometheus.CounterVec
	classifierLatency *prometheus.HistogramVec
	subscribers       prometheus.Gauge
	broadcasts        *prometheus.CounterVec
}

// MustNewMetrics registers the collectors with reg. Collectors that are
// already registered are reused, so several instances may share one
// registry.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "messages_total",
				Help:      "Chat messages processed, by resolved intent.",
			},
			[]string{"intent"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tasks",
				Name:      "operations_total",
				Help:      "Task operations executed, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		classifierLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "classifier",
				Name:      "request_duration_seconds",
				Help:      "Latency of classification calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "notify",
				Name:      "subscribers",
				Help:      "Currently registered push subscribers.",
			},
		),
		broadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notify",
				Name:      "deliveries_total",
				Help:      "Per-subscriber event deliveries, by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.messages = register(reg, m.messages)
	m.operations = register(reg, m.operations)
	m.classifierLatency = register(reg, m.classifierLatency)
	m.subscribers = register(reg, m.subscribers)
	m.broadcasts = register(reg, m.broadcasts)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) IncMessage(intent string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(intent).Inc()
}

// IncOperation counts a task operation; outcome is "success" or "failure".
func (m *Metrics) IncOperation(operation string, success bool) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome(success)).Inc()
}

func (m *Metrics) ObserveClassifier(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.classifierLatency.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}

// IncDelivery counts one event handed to, or dropped for, a subscriber.
func (m *Metrics) IncDelivery(delivered bool) {
	if m == nil {
		return
	}
	label := "delivered"
	if !delivered {
		label = "dropped"
	}
	m.broadcasts.WithLabelValues(label).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
