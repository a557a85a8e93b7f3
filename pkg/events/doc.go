// Package events implements the typed publish/subscribe bus shared by every
// polocloud node.
//
// An event is an immutable value whose type reports a Kind. Subscribers are
// registered per kind through the generic Subscribe function, so a callback
// for PlayerJoinEvent only ever receives PlayerJoinEvent values:
//
//	bus := events.NewBus(events.Config{Mode: events.ModeAsync}, tel)
//	defer bus.Close(ctx)
//
//	sub, err := events.Subscribe(bus, func(e events.PlayerJoinEvent) {
//	    log.Info().Str("player", e.Player.Name()).Msg("joined")
//	})
//	defer sub.Unsubscribe()
//
//	err = bus.Publish(ctx, events.PlayerJoinEvent{Player: p})
//
// In ModeSync every subscriber of the kind runs, in registration order,
// before Publish returns. In ModeAsync every subscription owns an unbounded
// FIFO mailbox drained by its own goroutine; Publish only enqueues.
//
// A Scope groups subscriptions so a module can release all of them at once.
//
// Codec turns events into a JSON envelope {id, kind, timestamp, payload}
// for delivery across a process boundary. Payloads that carry entities use
// the mapper document form.
package events
