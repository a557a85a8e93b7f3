package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Mode selects how Publish delivers events.
type Mode string

const (
	// ModeSync invokes every subscriber before Publish returns.
	ModeSync Mode = "sync"

	// ModeAsync enqueues into per-subscription mailboxes.
	ModeAsync Mode = "async"
)

// Delivery outcomes used as metric labels.
const (
	outcomeOK       = "ok"
	outcomePanic    = "panic"
	outcomeMismatch = "mismatch"
)

// Config configures a Bus.
type Config struct {
	// Mode is the delivery mode (sync, async). Empty means sync.
	Mode Mode `yaml:"mode" validate:"omitempty,oneof=sync async"`
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Registrar accepts subscriptions. It is implemented by Bus and Scope.
type Registrar interface {
	register(kind Kind, deliver func(Event) bool) (*Subscription, error)
}

// registry maps a kind to its subscriptions in registration order. A
// registry is never mutated once published through Bus.subs.
type registry map[Kind][]*Subscription

// Bus is a typed publish/subscribe registry.
type Bus struct {
	mode    Mode
	tel     *telemetry.Telemetry
	logger  *telemetry.Logger
	metrics *telemetry.Metrics

	mu     sync.Mutex
	subs   atomic.Pointer[registry]
	nextID atomic.Uint64
	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewBus creates a bus. A nil tel falls back to telemetry.Nop.
func NewBus(cfg Config, tel *telemetry.Telemetry) *Bus {
	if tel == nil {
		tel = telemetry.Nop()
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeSync
	}
	b := &Bus{
		mode:    mode,
		tel:     tel,
		logger:  tel.Logger.NewComponentLogger("events"),
		metrics: tel.Metrics,
	}
	empty := registry{}
	b.subs.Store(&empty)
	return b
}

// Mode returns the delivery mode.
func (b *Bus) Mode() Mode { return b.mode }

// Subscribers returns the number of live subscriptions for kind.
func (b *Bus) Subscribers(kind Kind) int {
	return len((*b.subs.Load())[kind])
}

// Publish delivers event to every subscriber of its kind in registration
// order.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return fault.ContractViolation("cannot publish a nil event")
	}
	if b.closed.Load() {
		return fault.ContractViolation("event bus is closed").WithOperation("publish")
	}

	kind := event.Kind()
	subs := (*b.subs.Load())[kind]

	_, span := b.tel.Tracer.StartPublishSpan(ctx, string(kind), len(subs))
	defer span.End()

	b.metrics.RecordEventPublished(string(kind))

	for _, sub := range subs {
		if b.mode == ModeAsync {
			if sub.box.push(event) {
				b.metrics.AddMailboxBacklog(string(kind), 1)
			}
			continue
		}
		outcome := b.dispatch(sub, event)
		telemetry.AddDeliveryEvent(span, string(kind), outcome)
	}
	return nil
}

// dispatch runs one delivery and returns its outcome.
func (b *Bus) dispatch(sub *Subscription, event Event) (outcome string) {
	if !sub.Active() {
		return outcomeOK
	}
	kind := string(event.Kind())

	defer func() {
		if r := recover(); r != nil {
			outcome = outcomePanic
			b.metrics.RecordEventDelivery(kind, outcome)
			b.logger.WithEventKind(kind).
				WithField("subscription", sub.id).
				WithField("panic", fmt.Sprint(r)).
				Error("event subscriber panicked")
		}
	}()

	if !sub.deliver(event) {
		err := fault.ContractViolation(fmt.Sprintf("subscriber for %s received %T", sub.kind, event)).
			WithCode(fault.CodeTypeMismatch)
		b.metrics.RecordEventDelivery(kind, outcomeMismatch)
		b.metrics.RecordError(fault.Label(err))
		b.logger.WithEventKind(kind).WithError(err).Error("dropping mismatched subscriber")
		sub.Unsubscribe()
		return outcomeMismatch
	}

	b.metrics.RecordEventDelivery(kind, outcomeOK)
	return outcomeOK
}

func (b *Bus) register(kind Kind, deliver func(Event) bool) (*Subscription, error) {
	if kind == "" {
		return nil, fault.ContractViolation("event type reports an empty kind")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed.Load() {
		return nil, fault.ContractViolation("event bus is closed").WithOperation("subscribe")
	}

	sub := &Subscription{
		id:      b.nextID.Add(1),
		kind:    kind,
		bus:     b,
		deliver: deliver,
	}
	sub.active.Store(true)

	if b.mode == ModeAsync {
		sub.box = newMailbox()
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			sub.box.run(func(e Event) {
				b.metrics.AddMailboxBacklog(string(kind), -1)
				b.dispatch(sub, e)
			})
		}()
	}

	b.swap(func(next registry) {
		next[kind] = append(append([]*Subscription(nil), next[kind]...), sub)
	})
	b.metrics.AddSubscribers(string(kind), 1)
	b.logger.WithEventKind(string(kind)).WithField("subscription", sub.id).Debug("subscribed")

	return sub, nil
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.swap(func(next registry) {
		current := next[sub.kind]
		kept := make([]*Subscription, 0, len(current))
		for _, s := range current {
			if s != sub {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(next, sub.kind)
			return
		}
		next[sub.kind] = kept
	})
	b.metrics.AddSubscribers(string(sub.kind), -1)

	if sub.box != nil {
		sub.box.close()
	}
}

// swap installs a modified copy of the registry. Callers hold b.mu.
func (b *Bus) swap(mutate func(registry)) {
	current := *b.subs.Load()
	next := make(registry, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	mutate(next)
	b.subs.Store(&next)
}

// Close stops accepting events and subscriptions. In async mode it waits
// for every mailbox to drain or for ctx to end.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed.Swap(true) {
		b.mu.Unlock()
		return nil
	}
	for _, subs := range *b.subs.Load() {
		for _, sub := range subs {
			if sub.box != nil {
				sub.box.close()
			}
		}
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus shutdown: %w", ctx.Err())
	}
}
