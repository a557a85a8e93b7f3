package provider

import (
	"context"
	"fmt"

	"github.com/polocloud/polocloud/pkg/async"
	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Hooks derive the events published after a completed mutation. A nil hook
// publishes nothing.
type Hooks[E any] struct {
	Created func(e E) []events.Event
	Updated func(prev, next E) []events.Event
	Deleted func(e E) []events.Event
}

// Family describes one provider family.
type Family[K comparable, E comparable] struct {
	// Name labels logs, spans and metrics (group, service, ...).
	Name string

	// Key extracts the key of an entity.
	Key func(E) K

	// Format renders a key for logs and spans.
	Format func(K) string

	// Prepare fills creation-time defaults before an entity is stored. Nil
	// stores the entity as given.
	Prepare func(E) E

	Hooks Hooks[E]
}

// Provider implements Contract over a Store.
type Provider[K comparable, E comparable] struct {
	family Family[K, E]
	store  Store[K, E]
	bus    events.Publisher
	tel    *telemetry.Telemetry
	logger *telemetry.Logger
	locks  keyLocks[K]
}

// New creates a provider. A nil bus disables event publication; a nil tel
// falls back to telemetry.Nop.
func New[K comparable, E comparable](family Family[K, E], store Store[K, E], bus events.Publisher, tel *telemetry.Telemetry) *Provider[K, E] {
	if tel == nil {
		tel = telemetry.Nop()
	}
	if family.Format == nil {
		family.Format = func(k K) string { return fmt.Sprint(k) }
	}
	return &Provider[K, E]{
		family: family,
		store:  store,
		bus:    bus,
		tel:    tel,
		logger: tel.Logger.NewComponentLogger("provider").WithField("family", family.Name),
	}
}

func (p *Provider[K, E]) observe(ctx context.Context, op, key string, fn func(context.Context) error) error {
	return p.tel.RecordProviderOperation(ctx, p.family.Name, op, key, fault.Label, fn)
}

func (p *Provider[K, E]) fail(op string, key K, err error) error {
	return fmt.Errorf("failed to %s %s %q: %w", op, p.family.Name, p.family.Format(key), err)
}

func (p *Provider[K, E]) publish(ctx context.Context, evs []events.Event) {
	if p.bus == nil {
		return
	}
	for _, ev := range evs {
		if err := p.bus.Publish(ctx, ev); err != nil {
			p.logger.WithEventKind(string(ev.Kind())).WithError(err).Warn("failed to publish event")
		}
	}
}

func (p *Provider[K, E]) refreshCount(ctx context.Context) {
	if n, err := p.store.Len(ctx); err == nil {
		p.tel.Metrics.SetEntityCount(p.family.Name, n)
	}
}

// FindAll implements Contract.
func (p *Provider[K, E]) FindAll(ctx context.Context) ([]E, error) {
	var out []E
	err := p.observe(ctx, "find_all", "", func(ctx context.Context) error {
		var err error
		out, err = p.store.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p.family.Name, err)
	}
	p.tel.Metrics.SetEntityCount(p.family.Name, len(out))
	return out, nil
}

// FindAllAsync implements Contract.
func (p *Provider[K, E]) FindAllAsync(ctx context.Context) *async.Future[[]E] {
	return async.Go(ctx, p.FindAll)
}

// Find implements Contract.
func (p *Provider[K, E]) Find(ctx context.Context, key K) (E, error) {
	var out E
	err := p.observe(ctx, "find", p.family.Format(key), func(ctx context.Context) error {
		e, err := p.store.Get(ctx, key)
		if fault.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		var zero E
		return zero, p.fail("find", key, err)
	}
	return out, nil
}

// FindAsync implements Contract.
func (p *Provider[K, E]) FindAsync(ctx context.Context, key K) *async.Future[E] {
	return async.Go(ctx, func(ctx context.Context) (E, error) { return p.Find(ctx, key) })
}

// Create implements Contract.
func (p *Provider[K, E]) Create(ctx context.Context, e E) (E, error) {
	var zero E
	if e == zero {
		return zero, fault.Invalid(fmt.Sprintf("cannot create a nil %s", p.family.Name), nil).WithOperation("create")
	}
	if p.family.Prepare != nil {
		e = p.family.Prepare(e)
	}
	key := p.family.Key(e)

	created := false
	err := p.observe(ctx, "create", p.family.Format(key), func(ctx context.Context) error {
		unlock := p.locks.lock(key)
		defer unlock()

		err := p.store.Insert(ctx, key, e)
		if fault.IsConflict(err) {
			return nil
		}
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return zero, p.fail("create", key, err)
	}
	if !created {
		p.logger.WithEntity(p.family.Name, p.family.Format(key)).Debug("create skipped, key exists")
		return zero, nil
	}

	p.refreshCount(ctx)
	if p.family.Hooks.Created != nil {
		p.publish(ctx, p.family.Hooks.Created(e))
	}
	return e, nil
}

// CreateAsync implements Contract.
func (p *Provider[K, E]) CreateAsync(ctx context.Context, e E) *async.Future[E] {
	return async.Go(ctx, func(ctx context.Context) (E, error) { return p.Create(ctx, e) })
}

// Update implements Contract.
func (p *Provider[K, E]) Update(ctx context.Context, e E) (E, error) {
	var zero E
	if e == zero {
		return zero, fault.Invalid(fmt.Sprintf("cannot update a nil %s", p.family.Name), nil).WithOperation("update")
	}
	key := p.family.Key(e)

	var prev E
	updated := false
	err := p.observe(ctx, "update", p.family.Format(key), func(ctx context.Context) error {
		unlock := p.locks.lock(key)
		defer unlock()

		old, err := p.store.Get(ctx, key)
		if fault.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		err = p.store.Replace(ctx, key, e)
		if fault.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		prev, updated = old, true
		return nil
	})
	if err != nil {
		return zero, p.fail("update", key, err)
	}
	if !updated {
		return zero, nil
	}

	if p.family.Hooks.Updated != nil {
		p.publish(ctx, p.family.Hooks.Updated(prev, e))
	}
	return e, nil
}

// UpdateAsync implements Contract.
func (p *Provider[K, E]) UpdateAsync(ctx context.Context, e E) *async.Future[E] {
	return async.Go(ctx, func(ctx context.Context) (E, error) { return p.Update(ctx, e) })
}

// Delete implements Contract.
func (p *Provider[K, E]) Delete(ctx context.Context, key K) (E, error) {
	var removed E
	err := p.observe(ctx, "delete", p.family.Format(key), func(ctx context.Context) error {
		unlock := p.locks.lock(key)
		defer unlock()

		e, err := p.store.Remove(ctx, key)
		if fault.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		removed = e
		return nil
	})
	var zero E
	if err != nil {
		return zero, p.fail("delete", key, err)
	}
	if removed == zero {
		return zero, nil
	}

	p.refreshCount(ctx)
	if p.family.Hooks.Deleted != nil {
		p.publish(ctx, p.family.Hooks.Deleted(removed))
	}
	return removed, nil
}

// DeleteAsync implements Contract.
func (p *Provider[K, E]) DeleteAsync(ctx context.Context, key K) *async.Future[E] {
	return async.Go(ctx, func(ctx context.Context) (E, error) { return p.Delete(ctx, key) })
}

// DeleteEntity implements Contract.
func (p *Provider[K, E]) DeleteEntity(ctx context.Context, e E) (E, error) {
	var zero E
	if e == zero {
		return zero, nil
	}
	return p.Delete(ctx, p.family.Key(e))
}

// DeleteEntityAsync implements Contract.
func (p *Provider[K, E]) DeleteEntityAsync(ctx context.Context, e E) *async.Future[E] {
	return async.Go(ctx, func(ctx context.Context) (E, error) { return p.DeleteEntity(ctx, e) })
}
