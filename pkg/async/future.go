// Package async provides Future, the deferred result returned by the async
// twins of provider operations.
//
// A Future is completed exactly once, with either a value or an error.
// Async operations are the synchronous operation scheduled on a goroutine,
// so both forms share one code path and report failures the same way.
package async

import (
	"context"
	"fmt"
	"sync"
)

// Future is the deferred result of an operation.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New returns an uncompleted Future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn on a new goroutine and returns a Future for its result. fn
// receives a context detached from the cancellation of ctx: the operation
// runs to completion even if the caller stops waiting. A panic in fn
// completes the Future with an error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := New[T]()
	detached := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.Complete(zero, fmt.Errorf("async operation panicked: %v", r))
			}
		}()
		f.Complete(fn(detached))
	}()
	return f
}

// Completed returns a Future already completed with value.
func Completed[T any](value T) *Future[T] {
	f := New[T]()
	f.Complete(value, nil)
	return f
}

// Failed returns a Future already completed with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	var zero T
	f.Complete(zero, err)
	return f
}

// Complete sets the result. Only the first call has an effect; it reports
// whether this call completed the Future.
func (f *Future[T]) Complete(value T, err error) bool {
	completed := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
		completed = true
	})
	return completed
}

// Done returns a channel closed when the Future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future completes or ctx is done. Giving up on the
// wait does not cancel the underlying operation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Get blocks until the Future completes.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// Then returns a Future completed with fn applied to the result of f.
// Errors pass through without calling fn.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := New[U]()
	go func() {
		v, err := f.Get()
		if err != nil {
			var zero U
			out.Complete(zero, err)
			return
		}
		out.Complete(fn(v))
	}()
	return out
}

// All waits for every Future and returns their values in order, or the
// first error in order.
func All[T any](ctx context.Context, fs ...*Future[T]) ([]T, error) {
	out := make([]T, 0, len(fs))
	for _, f := range fs {
		v, err := f.Await(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
