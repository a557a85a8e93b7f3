package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for a polocloud node.
type Metrics struct {
	config MetricsConfig

	// Provider metrics
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	providerErrors   *prometheus.CounterVec
	entities         *prometheus.GaugeVec

	// Event bus metrics
	eventsPublished *prometheus.CounterVec
	eventsDelivered *prometheus.CounterVec
	subscribers     *prometheus.GaugeVec
	mailboxBacklog  *prometheus.GaugeVec

	// Codec metrics
	codecErrors *prometheus.CounterVec

	// Error metrics
	errorsByClass *prometheus.CounterVec

	// Module metrics
	modules *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	// Create a new registry
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		// Provider metrics
		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of provider calls",
			},
			[]string{"provider", "operation"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Duration of provider calls in seconds",
				Buckets:   buckets,
			},
			[]string{"provider", "operation"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of provider errors",
			},
			[]string{"provider", "operation"},
		),
		entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "entities",
				Help:      "Current number of entities held by a provider",
			},
			[]string{"provider"},
		),

		// Event bus metrics
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of events published",
			},
			[]string{"kind"},
		),
		eventsDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_delivered_total",
				Help:      "Total number of event deliveries by outcome",
			},
			[]string{"kind", "outcome"},
		),
		subscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "event_subscribers",
				Help:      "Current number of subscriptions per event kind",
			},
			[]string{"kind"},
		),
		mailboxBacklog: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "event_mailbox_backlog",
				Help:      "Events queued for asynchronous delivery per event kind",
			},
			[]string{"kind"},
		),

		// Codec metrics
		codecErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "codec_errors_total",
				Help:      "Total number of encode or decode failures",
			},
			[]string{"codec", "direction"},
		),

		// Error metrics
		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by fault class",
			},
			[]string{"class"},
		),

		// Module metrics
		modules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "modules",
				Help:      "Current number of modules by lifecycle state",
			},
			[]string{"state"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.providerCalls,
		m.providerDuration,
		m.providerErrors,
		m.entities,
		m.eventsPublished,
		m.eventsDelivered,
		m.subscribers,
		m.mailboxBacklog,
		m.codecErrors,
		m.errorsByClass,
		m.modules,
	)

	return m, nil
}

// Provider Metrics

// RecordProviderCall records a provider call with its duration.
func (m *Metrics) RecordProviderCall(provider, operation string, duration time.Duration) {
	if m == nil || m.providerCalls == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, operation).Inc()
	m.providerDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordProviderError records a provider error.
func (m *Metrics) RecordProviderError(provider, operation string) {
	if m == nil || m.providerErrors == nil {
		return
	}
	m.providerErrors.WithLabelValues(provider, operation).Inc()
}

// SetEntityCount sets the current number of entities held by a provider.
func (m *Metrics) SetEntityCount(provider string, count int) {
	if m == nil || m.entities == nil {
		return
	}
	m.entities.WithLabelValues(provider).Set(float64(count))
}

// Event Bus Metrics

// RecordEventPublished counts a published event.
func (m *Metrics) RecordEventPublished(kind string) {
	if m == nil || m.eventsPublished == nil {
		return
	}
	m.eventsPublished.WithLabelValues(kind).Inc()
}

// RecordEventDelivery counts a delivery with its outcome (ok, panic, mismatch).
func (m *Metrics) RecordEventDelivery(kind, outcome string) {
	if m == nil || m.eventsDelivered == nil {
		return
	}
	m.eventsDelivered.WithLabelValues(kind, outcome).Inc()
}

// AddSubscribers adjusts the subscription gauge for an event kind.
func (m *Metrics) AddSubscribers(kind string, delta int) {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.WithLabelValues(kind).Add(float64(delta))
}

// AddMailboxBacklog adjusts the queued delivery gauge for an event kind.
func (m *Metrics) AddMailboxBacklog(kind string, delta int) {
	if m == nil || m.mailboxBacklog == nil {
		return
	}
	m.mailboxBacklog.WithLabelValues(kind).Add(float64(delta))
}

// Codec Metrics

// RecordCodecError counts a codec failure. direction is encode or decode.
func (m *Metrics) RecordCodecError(codec, direction string) {
	if m == nil || m.codecErrors == nil {
		return
	}
	m.codecErrors.WithLabelValues(codec, direction).Inc()
}

// Error Metrics

// RecordError records an error by fault class.
func (m *Metrics) RecordError(errorClass string) {
	if m == nil || m.errorsByClass == nil {
		return
	}
	if errorClass == "" {
		errorClass = "unclassified"
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
}

// Module Metrics

// AddModules adjusts the module gauge for a lifecycle state.
func (m *Metrics) AddModules(state string, delta int) {
	if m == nil || m.modules == nil {
		return
	}
	m.modules.WithLabelValues(state).Add(float64(delta))
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry returns the underlying registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics. The returned
// server can be shut down by the caller.
func (m *Metrics) StartMetricsServer() (*http.Server, error) {
	if m == nil || !m.config.Enabled {
		return nil, nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't fail the application
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return server, nil
}
