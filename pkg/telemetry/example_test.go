package telemetry_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = "1.0.0"

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	// Start metrics server (non-blocking)
	srv, err := tel.StartMetricsServer()
	if err != nil {
		panic(err)
	}
	if srv != nil {
		defer srv.Close()
	}

	tel.Logger.NewComponentLogger("node").Info("node started")
}

// Example_structuredLogging demonstrates entity-scoped logging.
func Example_structuredLogging() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Tracing.Enabled = false

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	logger := tel.Logger.NewComponentLogger("provider")
	logger = logger.WithEntity("service", "lobby-1").WithOperation("update")

	logger.Debug("applying patch")
	logger.Info("service updated")
	logger.WithError(errors.New("port in use")).Warn("endpoint rejected")
}

// Example_providerInstrumentation demonstrates wrapping a provider call.
func Example_providerInstrumentation() {
	tel := telemetry.Nop()

	err := tel.RecordProviderOperation(context.Background(), "group", "create", "lobby", nil, func(ctx context.Context) error {
		time.Sleep(time.Millisecond)
		return nil
	})
	fmt.Println(err)
	// Output: <nil>
}
