package telemetry

import (
	"context"
	"net/http"
)

// Telemetry provides a unified telemetry interface combining logging, tracing, and metrics.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Config  *Config
}

// NewTelemetry creates a new telemetry instance from configuration.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Initialize logger
	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	// Initialize tracer
	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, err
	}

	// Initialize metrics
	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: metrics,
		Config:  cfg,
	}, nil
}

// Nop returns telemetry that discards logs and records nothing.
func Nop() *Telemetry {
	cfg := TestConfig()
	tracer, _ := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	metrics, _ := NewMetrics(cfg.Metrics)
	return &Telemetry{
		Logger:  NopLogger(),
		Tracer:  tracer,
		Metrics: metrics,
		Config:  cfg,
	}
}

// NewTestTelemetry returns telemetry with a live metrics registry and a
// discarding logger, so tests can assert on recorded series.
func NewTestTelemetry() *Telemetry {
	tel := Nop()
	mcfg := DefaultConfig().Metrics
	mcfg.Namespace = "polocloud_test"
	tel.Metrics, _ = NewMetrics(mcfg)
	return tel
}

// Shutdown gracefully shuts down all telemetry components.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	// Metrics server is not explicitly shut down here as it may need to continue
	// serving metrics until the very end of the application lifecycle
	return t.Tracer.Shutdown(ctx)
}

// StartMetricsServer starts the metrics HTTP server if metrics are enabled.
func (t *Telemetry) StartMetricsServer() (*http.Server, error) {
	return t.Metrics.StartMetricsServer()
}

// RecordProviderOperation wraps a provider call with a span, a duration
// observation and an error counter. classify maps a failure to its fault
// class label and may be nil. Safe to call on a nil receiver.
func (t *Telemetry) RecordProviderOperation(ctx context.Context, provider, operation, key string, classify func(error) string, fn func(context.Context) error) error {
	if t == nil {
		return fn(ctx)
	}

	ctx, span := t.Tracer.StartProviderSpan(ctx, provider, operation, key)
	defer span.End()

	timer := NewTimer()
	err := fn(ctx)

	t.Metrics.RecordProviderCall(provider, operation, timer.Duration())
	if err != nil {
		t.Metrics.RecordProviderError(provider, operation)
		class := ""
		if classify != nil {
			class = classify(err)
		}
		t.Metrics.RecordError(class)
		span.SetAttributes(AttrErrorClass.String(class))
		RecordError(span, err)
		return err
	}
	RecordSuccess(span)
	return nil
}
