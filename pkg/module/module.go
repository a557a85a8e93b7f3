package module

import (
	"context"

	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/provider"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Module is a pluggable unit hosted by a node.
type Module interface {
	// Enable establishes the module's subscriptions and provider use. It is
	// called exactly once, when the module is admitted.
	Enable(ctx context.Context, env *Environment) error

	// Disable releases everything acquired in Enable. It is called exactly
	// once, also after a failed Enable, and must cope with partial setup.
	Disable(ctx context.Context) error
}

// Factory creates a fresh module instance.
type Factory func() Module

// Providers bundles the provider contracts a node exposes to its modules.
type Providers struct {
	Groups    provider.GroupProvider
	Services  provider.ServiceProvider
	Players   provider.PlayerProvider
	Templates provider.TemplateProvider
}

// Environment is what a module receives on Enable.
type Environment struct {
	// Metadata is the module's own metadata.
	Metadata Metadata

	// Events publishes on the node bus. Subscriptions made through it are
	// released when the module is unloaded.
	Events *events.Scope

	Providers Providers

	// Logger is tagged with the module id and entry point.
	Logger *telemetry.Logger
}
