package provider

import "context"

// Store is the authoritative keyed storage behind a Provider. Stores report
// absence with fault.NotFound and key collisions with fault.Conflict; the
// provider turns both into absent results.
type Store[K comparable, E any] interface {
	// Get returns the entity under key.
	Get(ctx context.Context, key K) (E, error)

	// List returns every entity in insertion order.
	List(ctx context.Context) ([]E, error)

	// Insert stores e under a key that must not exist.
	Insert(ctx context.Context, key K, e E) error

	// Replace stores e under a key that must exist.
	Replace(ctx context.Context, key K, e E) error

	// Remove deletes and returns the entity under key.
	Remove(ctx context.Context, key K) (E, error)

	// Len returns the number of stored entities.
	Len(ctx context.Context) (int, error)
}
