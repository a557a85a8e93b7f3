package provider

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/polocloud/polocloud/pkg/async"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Family names.
const (
	FamilyGroup    = "group"
	FamilyService  = "service"
	FamilyPlayer   = "player"
	FamilyTemplate = "template"
)

func one(e events.Event) []events.Event { return []events.Event{e} }

// NewGroupProvider returns the group provider over store.
func NewGroupProvider(store Store[string, *entity.Group], bus events.Publisher, tel *telemetry.Telemetry) *Provider[string, *entity.Group] {
	return New(Family[string, *entity.Group]{
		Name:    FamilyGroup,
		Key:     (*entity.Group).Name,
		Prepare: func(g *entity.Group) *entity.Group { return g.Stamped(time.Now()) },
		Hooks: Hooks[*entity.Group]{
			Created: func(g *entity.Group) []events.Event { return one(events.GroupCreateEvent{Group: g}) },
			Updated: func(_, g *entity.Group) []events.Event { return one(events.GroupUpdateEvent{Group: g}) },
			Deleted: func(g *entity.Group) []events.Event { return one(events.GroupDeleteEvent{Group: g}) },
		},
	}, store, bus, tel)
}

// NewTemplateProvider returns the template provider over store.
func NewTemplateProvider(store Store[string, entity.Template], bus events.Publisher, tel *telemetry.Telemetry) *Provider[string, entity.Template] {
	return New(Family[string, entity.Template]{
		Name: FamilyTemplate,
		Key:  entity.Template.Name,
		Hooks: Hooks[entity.Template]{
			Created: func(t entity.Template) []events.Event { return one(events.TemplateCreateEvent{Template: t}) },
			Deleted: func(t entity.Template) []events.Event { return one(events.TemplateDeleteEvent{Template: t}) },
		},
	}, store, bus, tel)
}

// Players is the player provider.
type Players struct {
	*Provider[uuid.UUID, *entity.Player]
}

// NewPlayerProvider returns the player provider over store.
func NewPlayerProvider(store Store[uuid.UUID, *entity.Player], bus events.Publisher, tel *telemetry.Telemetry) *Players {
	return &Players{New(Family[uuid.UUID, *entity.Player]{
		Name:   FamilyPlayer,
		Key:    (*entity.Player).UniqueID,
		Format: uuid.UUID.String,
		Hooks: Hooks[*entity.Player]{
			Created: func(p *entity.Player) []events.Event { return one(events.PlayerJoinEvent{Player: p}) },
			Updated: func(_, p *entity.Player) []events.Event { return one(events.PlayerUpdateEvent{Player: p}) },
			Deleted: func(p *entity.Player) []events.Event { return one(events.PlayerLeaveEvent{Player: p}) },
		},
	}, store, bus, tel)}
}

// FindByName implements PlayerProvider. Names match case-insensitively.
func (p *Players) FindByName(ctx context.Context, name string) (*entity.Player, error) {
	all, err := p.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, pl := range all {
		if strings.EqualFold(pl.Name(), name) {
			return pl, nil
		}
	}
	return nil, nil
}

// FindByNameAsync implements PlayerProvider.
func (p *Players) FindByNameAsync(ctx context.Context, name string) *async.Future[*entity.Player] {
	return async.Go(ctx, func(ctx context.Context) (*entity.Player, error) { return p.FindByName(ctx, name) })
}

// Services is the service provider.
type Services struct {
	*Provider[string, *entity.Service]

	lifecycle    Lifecycle
	platformType func(entity.PlatformIndex) entity.GroupType
	boots        keyLocks[string]
}

// ServiceOption configures a Services provider.
type ServiceOption func(*Services)

// WithLifecycle sets the collaborator that starts and stops services.
func WithLifecycle(l Lifecycle) ServiceOption {
	return func(s *Services) { s.lifecycle = l }
}

// WithPlatformTypes sets how Boot resolves the group type of a platform.
// The default is SERVER for every platform.
func WithPlatformTypes(fn func(entity.PlatformIndex) entity.GroupType) ServiceOption {
	return func(s *Services) { s.platformType = fn }
}

// NewServiceProvider returns the service provider over store.
func NewServiceProvider(store Store[string, *entity.Service], bus events.Publisher, tel *telemetry.Telemetry, opts ...ServiceOption) *Services {
	s := &Services{
		Provider: New(Family[string, *entity.Service]{
			Name:    FamilyService,
			Key:     (*entity.Service).Name,
			Prepare: func(s *entity.Service) *entity.Service { return s.Stamped(time.Now()) },
			Hooks: Hooks[*entity.Service]{
				Created: func(s *entity.Service) []events.Event { return one(events.ServiceRegisterEvent{Service: s}) },
				Updated: serviceChanges,
				Deleted: func(s *entity.Service) []events.Event { return one(events.ServiceUnregisterEvent{Service: s}) },
			},
		}, store, bus, tel),
		platformType: func(entity.PlatformIndex) entity.GroupType { return entity.GroupTypeServer },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// serviceChanges reports state and player count transitions.
func serviceChanges(prev, next *entity.Service) []events.Event {
	var out []events.Event
	if prev.State() != next.State() {
		out = append(out, events.ServiceChangeStateEvent{Service: next, Previous: prev.State()})
	}
	if prev.PlayerCount() != next.PlayerCount() {
		out = append(out, events.ServiceChangePlayerCountEvent{Service: next})
	}
	return out
}

// FindByGroup implements ServiceProvider.
func (s *Services) FindByGroup(ctx context.Context, group string) ([]*entity.Service, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Service, 0, len(all))
	for _, svc := range all {
		if svc.GroupName() == group {
			out = append(out, svc)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Service) int { return int(a.ID()) - int(b.ID()) })
	return out, nil
}

// FindByGroupAsync implements ServiceProvider.
func (s *Services) FindByGroupAsync(ctx context.Context, group string) *async.Future[[]*entity.Service] {
	return async.Go(ctx, func(ctx context.Context) ([]*entity.Service, error) { return s.FindByGroup(ctx, group) })
}

// nextID returns the lowest positive id not used by services.
func nextID(services []*entity.Service) int32 {
	used := make(map[int32]bool, len(services))
	for _, svc := range services {
		used[svc.ID()] = true
	}
	id := int32(1)
	for used[id] {
		id++
	}
	return id
}

// Boot implements ServiceProvider. Boots of one group are serialized so
// concurrent boots receive distinct ids.
func (s *Services) Boot(ctx context.Context, group *entity.Group, cfg entity.BootConfiguration) (*entity.Service, error) {
	if group == nil {
		return nil, fault.Invalid("cannot boot a nil group", nil).WithOperation("boot")
	}
	if s.lifecycle == nil {
		return nil, fault.ContractViolation("no service lifecycle configured").WithOperation("boot")
	}

	var booted *entity.Service
	err := s.observe(ctx, "boot", group.Name(), func(ctx context.Context) error {
		unlock := s.boots.lock(group.Name())
		defer unlock()

		existing, err := s.FindByGroup(ctx, group.Name())
		if err != nil {
			return err
		}
		spec := cfg.Resolve(group, s.platformType(group.Platform()), nextID(existing))
		svc, err := entity.NewService(spec)
		if err != nil {
			return err
		}

		created, err := s.Create(ctx, svc)
		if err != nil {
			return err
		}
		if created == nil {
			return fault.Conflict(fmt.Sprintf("service %s already exists", svc.Name())).WithEntity(FamilyService)
		}

		started, err := s.lifecycle.Start(ctx, created)
		if err != nil {
			if _, derr := s.Delete(ctx, created.Name()); derr != nil {
				s.logger.WithEntity(FamilyService, created.Name()).WithError(derr).Warn("failed to remove service after start failure")
			}
			return fmt.Errorf("failed to start %s: %w", created.Name(), err)
		}
		booted = created
		if started != nil && !started.Identical(created) {
			updated, err := s.Update(ctx, started)
			if err != nil {
				return err
			}
			if updated != nil {
				booted = updated
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to boot %s: %w", group.Name(), err)
	}
	s.logger.WithEntity(FamilyService, booted.Name()).Info("service booted")
	return booted, nil
}

// BootAsync implements ServiceProvider.
func (s *Services) BootAsync(ctx context.Context, group *entity.Group, cfg entity.BootConfiguration) *async.Future[*entity.Service] {
	return async.Go(ctx, func(ctx context.Context) (*entity.Service, error) { return s.Boot(ctx, group, cfg) })
}

// Shutdown implements ServiceProvider.
func (s *Services) Shutdown(ctx context.Context, name string) (*entity.Service, error) {
	if s.lifecycle == nil {
		return nil, fault.ContractViolation("no service lifecycle configured").WithOperation("shutdown")
	}

	var removed *entity.Service
	err := s.observe(ctx, "shutdown", name, func(ctx context.Context) error {
		svc, err := s.Find(ctx, name)
		if err != nil || svc == nil {
			return err
		}
		s.publish(ctx, one(events.ServiceShutdownEvent{Service: svc}))
		if err := s.lifecycle.Stop(ctx, svc); err != nil {
			return fmt.Errorf("failed to stop %s: %w", name, err)
		}
		removed, err = s.Delete(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// ShutdownAsync implements ServiceProvider.
func (s *Services) ShutdownAsync(ctx context.Context, name string) *async.Future[*entity.Service] {
	return async.Go(ctx, func(ctx context.Context) (*entity.Service, error) { return s.Shutdown(ctx, name) })
}

// Compile-time contract checks.
var (
	_ GroupProvider    = (*Provider[string, *entity.Group])(nil)
	_ TemplateProvider = (*Provider[string, entity.Template])(nil)
	_ PlayerProvider   = (*Players)(nil)
	_ ServiceProvider  = (*Services)(nil)
)
