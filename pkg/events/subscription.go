package events

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/polocloud/polocloud/pkg/fault"
)

// Subscription is a registered callback for one event kind.
type Subscription struct {
	id      uint64
	kind    Kind
	bus     *Bus
	deliver func(Event) bool
	box     *mailbox
	active  atomic.Bool
	once    sync.Once
}

// Kind returns the subscribed event kind.
func (s *Subscription) Kind() Kind { return s.kind }

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool { return s.active.Load() }

// Unsubscribe stops delivery. Events already queued for the subscription
// are discarded. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.active.Store(false)
		s.bus.remove(s)
	})
}

// Subscribe registers fn for every future event of type T.
func Subscribe[T Event](r Registrar, fn func(T)) (*Subscription, error) {
	if fn == nil {
		return nil, fault.ContractViolation("nil event callback")
	}
	return r.register(KindOf[T](), func(e Event) bool {
		t, ok := e.(T)
		if !ok {
			return false
		}
		fn(t)
		return true
	})
}

// Scope groups subscriptions for bulk release.
type Scope struct {
	bus *Bus

	mu       sync.Mutex
	subs     []*Subscription
	released bool
}

// NewScope returns an empty scope over b.
func (b *Bus) NewScope() *Scope {
	return &Scope{bus: b}
}

// Publish forwards to the underlying bus.
func (s *Scope) Publish(ctx context.Context, event Event) error {
	return s.bus.Publish(ctx, event)
}

// Len returns the number of subscriptions held by the scope.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Scope) register(kind Kind, deliver func(Event) bool) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, fault.ContractViolation("subscription scope is released").WithOperation("subscribe")
	}
	sub, err := s.bus.register(kind, deliver)
	if err != nil {
		return nil, err
	}
	s.subs = append(s.subs, sub)
	return sub, nil
}

// Release unsubscribes everything registered through the scope, newest
// first. Safe to call more than once.
func (s *Scope) Release() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.released = true
	s.mu.Unlock()

	for _, sub := range slices.Backward(subs) {
		sub.Unsubscribe()
	}
}
