package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/polocloud/polocloud/pkg/async"
	"github.com/polocloud/polocloud/pkg/entity"
)

// Contract is the CRUD surface shared by every provider family. K is the
// entity key and E the entity type; the zero E means absent.
type Contract[K comparable, E any] interface {
	// FindAll returns every entity.
	FindAll(ctx context.Context) ([]E, error)

	// FindAllAsync is the asynchronous twin of FindAll.
	FindAllAsync(ctx context.Context) *async.Future[[]E]

	// Find returns the entity stored under key, or the zero E.
	Find(ctx context.Context, key K) (E, error)

	// FindAsync is the asynchronous twin of Find.
	FindAsync(ctx context.Context, key K) *async.Future[E]

	// Create stores e and returns it, or the zero E when its key is taken.
	Create(ctx context.Context, e E) (E, error)

	// CreateAsync is the asynchronous twin of Create.
	CreateAsync(ctx context.Context, e E) *async.Future[E]

	// Update replaces the entity under the key of e wholesale and returns
	// e, or the zero E when the key is absent.
	Update(ctx context.Context, e E) (E, error)

	// UpdateAsync is the asynchronous twin of Update.
	UpdateAsync(ctx context.Context, e E) *async.Future[E]

	// Delete removes and returns the entity under key, or the zero E.
	Delete(ctx context.Context, key K) (E, error)

	// DeleteAsync is the asynchronous twin of Delete.
	DeleteAsync(ctx context.Context, key K) *async.Future[E]

	// DeleteEntity deletes the entity under the key of e.
	DeleteEntity(ctx context.Context, e E) (E, error)

	// DeleteEntityAsync is the asynchronous twin of DeleteEntity.
	DeleteEntityAsync(ctx context.Context, e E) *async.Future[E]
}

// GroupProvider manages groups keyed by name.
type GroupProvider interface {
	Contract[string, *entity.Group]
}

// TemplateProvider manages templates keyed by name.
type TemplateProvider interface {
	Contract[string, entity.Template]
}

// PlayerProvider manages online players keyed by unique id.
type PlayerProvider interface {
	Contract[uuid.UUID, *entity.Player]

	// FindByName returns the player with the given name, or nil.
	FindByName(ctx context.Context, name string) (*entity.Player, error)

	// FindByNameAsync is the asynchronous twin of FindByName.
	FindByNameAsync(ctx context.Context, name string) *async.Future[*entity.Player]
}

// ServiceProvider manages service instances keyed by service name.
type ServiceProvider interface {
	Contract[string, *entity.Service]

	// FindByGroup returns the services of a group ordered by id.
	FindByGroup(ctx context.Context, group string) ([]*entity.Service, error)

	// FindByGroupAsync is the asynchronous twin of FindByGroup.
	FindByGroupAsync(ctx context.Context, group string) *async.Future[[]*entity.Service]

	// Boot registers a new instance of group and asks the lifecycle to
	// start it.
	Boot(ctx context.Context, group *entity.Group, cfg entity.BootConfiguration) (*entity.Service, error)

	// BootAsync is the asynchronous twin of Boot.
	BootAsync(ctx context.Context, group *entity.Group, cfg entity.BootConfiguration) *async.Future[*entity.Service]

	// Shutdown asks the lifecycle to stop the named service and removes it.
	// It returns the removed service, or nil when no such service exists.
	Shutdown(ctx context.Context, name string) (*entity.Service, error)

	// ShutdownAsync is the asynchronous twin of Shutdown.
	ShutdownAsync(ctx context.Context, name string) *async.Future[*entity.Service]
}

// Lifecycle starts and stops service processes. It is implemented by the
// hosting runtime.
type Lifecycle interface {
	// Start launches s and returns its state after launch.
	Start(ctx context.Context, s *entity.Service) (*entity.Service, error)

	// Stop terminates s.
	Stop(ctx context.Context, s *entity.Service) error
}
