// Package node assembles a polocloud node: telemetry, the event bus, the
// provider stores, the four providers and the module host.
package node

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/polocloud/polocloud/pkg/config"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/mapper"
	"github.com/polocloud/polocloud/pkg/module"
	"github.com/polocloud/polocloud/pkg/provider"
	"github.com/polocloud/polocloud/pkg/stores"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Node is an assembled node.
type Node struct {
	cfg *config.NodeConfig

	Telemetry *telemetry.Telemetry
	Bus       *events.Bus
	Codec     *events.Codec

	// Store and Journal are set with the sqlite driver only; Journal only
	// when journaling is enabled.
	Store   *stores.SQLiteStore
	Journal *stores.Journal

	Groups    *provider.Provider[string, *entity.Group]
	Services  *provider.Services
	Players   *provider.Players
	Templates *provider.Provider[string, entity.Template]

	Host *module.Host

	journalScope  *events.Scope
	metricsServer *http.Server
	ownTelemetry  bool
}

// Option configures New.
type Option func(*options)

type options struct {
	tel       *telemetry.Telemetry
	lifecycle provider.Lifecycle
	modules   map[string]module.Factory
}

// WithTelemetry uses tel instead of building telemetry from the config.
// The caller keeps ownership of tel.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(o *options) { o.tel = tel }
}

// WithLifecycle sets the collaborator that starts and stops services.
func WithLifecycle(l provider.Lifecycle) Option {
	return func(o *options) { o.lifecycle = l }
}

// WithModule registers a module factory under its entry point.
func WithModule(main string, factory module.Factory) Option {
	return func(o *options) { o.modules[main] = factory }
}

// journaled lists every built-in event recorded by the journal.
var journaled = []func(events.Registrar, *stores.Journal) (*events.Subscription, error){
	stores.Record[events.PlayerJoinEvent],
	stores.Record[events.PlayerLeaveEvent],
	stores.Record[events.PlayerUpdateEvent],
	stores.Record[events.LogEvent],
	stores.Record[events.ServiceChangePlayerCountEvent],
	stores.Record[events.ServiceChangeStateEvent],
	stores.Record[events.ServiceRegisterEvent],
	stores.Record[events.ServiceUnregisterEvent],
	stores.Record[events.ServiceShutdownEvent],
	stores.Record[events.GroupCreateEvent],
	stores.Record[events.GroupUpdateEvent],
	stores.Record[events.GroupDeleteEvent],
	stores.Record[events.TemplateCreateEvent],
	stores.Record[events.TemplateDeleteEvent],
	stores.Record[events.CloudInformationEvent],
}

func identity(s string) string { return s }

// New assembles a node from cfg. Modules are not admitted until Start.
func New(ctx context.Context, cfg *config.NodeConfig, opts ...Option) (n *Node, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{modules: make(map[string]module.Factory)}
	for _, opt := range opts {
		opt(&o)
	}

	n = &Node{cfg: cfg, Telemetry: o.tel}
	if n.Telemetry == nil {
		tel, err := telemetry.NewTelemetry(&cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		n.Telemetry = tel
		n.ownTelemetry = true
	}
	defer func() {
		if err != nil {
			_ = n.Close(context.WithoutCancel(ctx))
		}
	}()

	logger := n.Telemetry.Logger.NewComponentLogger("node")
	n.Bus = events.NewBus(cfg.Events, n.Telemetry)
	n.Codec = events.NewCodec().WithMetrics(n.Telemetry.Metrics)

	var (
		groups    provider.Store[string, *entity.Group]
		services  provider.Store[string, *entity.Service]
		players   provider.Store[uuid.UUID, *entity.Player]
		templates provider.Store[string, entity.Template]
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err := stores.NewSQLiteStore(*cfg.Store.SQLite, n.Telemetry.Logger)
		if err != nil {
			return nil, err
		}
		if err := store.Open(ctx); err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		n.Store = store
		groups = stores.NewTable[string](store, mapper.Groups, identity).WithMetrics(n.Telemetry.Metrics)
		services = stores.NewTable[string](store, mapper.Services, identity).WithMetrics(n.Telemetry.Metrics)
		players = stores.NewTable(store, mapper.Players, uuid.UUID.String).WithMetrics(n.Telemetry.Metrics)
		templates = stores.NewTable[string](store, mapper.Templates, identity).WithMetrics(n.Telemetry.Metrics)

		if cfg.Store.Journal {
			n.Journal = stores.NewJournal(store, n.Codec)
			n.journalScope = n.Bus.NewScope()
			for _, record := range journaled {
				if _, err := record(n.journalScope, n.Journal); err != nil {
					return nil, fmt.Errorf("failed to attach journal: %w", err)
				}
			}
		}
	default:
		groups = stores.NewMemoryStore[string, *entity.Group](provider.FamilyGroup, identity)
		services = stores.NewMemoryStore[string, *entity.Service](provider.FamilyService, identity)
		players = stores.NewMemoryStore[uuid.UUID, *entity.Player](provider.FamilyPlayer, uuid.UUID.String)
		templates = stores.NewMemoryStore[string, entity.Template](provider.FamilyTemplate, identity)
	}

	var serviceOpts []provider.ServiceOption
	if o.lifecycle != nil {
		serviceOpts = append(serviceOpts, provider.WithLifecycle(o.lifecycle))
	}
	n.Groups = provider.NewGroupProvider(groups, n.Bus, n.Telemetry)
	n.Services = provider.NewServiceProvider(services, n.Bus, n.Telemetry, serviceOpts...)
	n.Players = provider.NewPlayerProvider(players, n.Bus, n.Telemetry)
	n.Templates = provider.NewTemplateProvider(templates, n.Bus, n.Telemetry)

	n.Host = module.NewHost(n.Bus, module.Providers{
		Groups:    n.Groups,
		Services:  n.Services,
		Players:   n.Players,
		Templates: n.Templates,
	}, n.Telemetry)
	for main, factory := range o.modules {
		if err := n.Host.Register(main, factory); err != nil {
			return nil, err
		}
	}

	logger.WithFields(map[string]interface{}{
		"store":  cfg.Store.Driver,
		"events": string(n.Bus.Mode()),
	}).Info("node assembled")
	return n, nil
}

// Start exposes metrics and admits the modules found in the configured
// module directory. Module failures are returned but leave the node running.
func (n *Node) Start(ctx context.Context) error {
	if n.ownTelemetry {
		srv, err := n.Telemetry.StartMetricsServer()
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		n.metricsServer = srv
	}
	if n.cfg.Modules.Dir == "" {
		return nil
	}
	return n.Host.AdmitAll(ctx, n.cfg.Modules.Dir, n.cfg.Modules.Disabled...)
}

// Close unloads modules, drains the bus and releases the store. It is safe
// to call on a partially assembled node.
func (n *Node) Close(ctx context.Context) error {
	var errs []error
	if n.Host != nil {
		errs = append(errs, n.Host.Shutdown(ctx))
	}
	if n.Bus != nil {
		errs = append(errs, n.Bus.Close(ctx))
	}
	if n.journalScope != nil {
		n.journalScope.Release()
	}
	if n.Store != nil {
		errs = append(errs, n.Store.Close())
	}
	if n.metricsServer != nil {
		errs = append(errs, n.metricsServer.Shutdown(ctx))
	}
	if n.ownTelemetry {
		errs = append(errs, n.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
