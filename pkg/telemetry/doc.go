// Package telemetry provides observability instrumentation for a polocloud node.
//
// It combines structured logging (zerolog), distributed tracing
// (OpenTelemetry) and metrics (Prometheus) behind one Telemetry value that
// providers, the event bus and the module host receive at construction.
//
// # Usage
//
// Initialize telemetry at node startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	srv, err := tel.StartMetricsServer()
//
// Components that are built without telemetry fall back to Nop, which
// discards logs and records nothing. Every Metrics method is safe on a
// disabled or nil collector.
//
// # Structured Logging
//
//	logger := tel.Logger.NewComponentLogger("provider")
//	logger.WithEntity("group", "lobby").WithOperation("create").Info("group created")
//
// # Tracing
//
// Provider calls are wrapped by RecordProviderOperation, which opens a span
// named provider.<family>.<operation>, observes its duration and counts
// failures by fault class:
//
//	err := tel.RecordProviderOperation(ctx, "group", "create", "lobby", fault.Label, fn)
//
// Event publication opens an event.publish span; each subscriber delivery is
// added to it as an event.deliver span event.
//
// Supported exporters: otlp (gRPC), stdout, none.
//
// # Metrics
//
// All series live on a private registry under the configured namespace:
//
//	provider_calls_total{provider,operation}
//	provider_call_duration_seconds{provider,operation}
//	provider_errors_total{provider,operation}
//	entities{provider}
//	events_published_total{kind}
//	events_delivered_total{kind,outcome}
//	event_subscribers{kind}
//	event_mailbox_backlog{kind}
//	codec_errors_total{codec,direction}
//	errors_by_class_total{class}
//	modules{state}
package telemetry
