// Package provider defines the provider contracts every polocloud node
// presents for groups, services, players and templates, and a generic
// implementation of them over a Store.
//
// Every operation has a synchronous form and an asynchronous twin that
// returns an async.Future. The twin schedules the synchronous form on a
// goroutine, so both share one code path, one lock discipline and one error
// channel.
//
// Absence is not an error: Find, Update and Delete return a nil entity when
// the key does not exist, and Create returns nil when the key is taken.
// Mutations on the same key are serialized. Events describing a completed
// mutation are published after the key lock is released; a no-op mutation
// publishes nothing.
package provider
