package pool

import (
	"context"
	"fmt"
)

// Bounded wraps a Pool with a fixed number of lease slots, so Acquire blocks
// until an earlier guard completes or the context is done. It trades the core
// pool's never-blocking contract for strict backpressure on the number of
// simultaneously outstanding guards. The wrapped pool keeps its LIFO order.
//
// A slot is freed when a guard completes either way: a released value comes
// back to the stack, a detached value leaves for good but its slot is handed
// to the next waiter, who receives a freshly built replacement.
type Bounded[T any] struct {
	name    string
	inner   *Pool[T]
	factory func() T
	sem     chan struct{}
}

// NewBounded constructs a bounded pool with capacity pre-built values and the
// same number of lease slots. Capacity must be positive and factory non-nil.
func NewBounded[T any](name string, capacity int, factory func() T, opts ...Option) *Bounded[T] {
	if name == "" {
		panic("pool: bounded pool name must be non-empty")
	}
	if capacity <= 0 {
		panic(fmt.Sprintf("pool %s: capacity must be positive", name))
	}
	if factory == nil {
		panic(fmt.Sprintf("pool %s: factory must be provided", name))
	}
	b := &Bounded[T]{
		name:    name,
		factory: factory,
		sem:     make(chan struct{}, capacity),
	}
	for i := 0; i < capacity; i++ {
		b.sem <- struct{}{}
	}
	opts = append(opts, WithName(name), WithReleaseHook(b.refill), WithDetachHook(b.refill))
	b.inner = New(capacity, factory, opts...)
	return b
}

// Acquire blocks until a lease slot is free, then pulls a borrowed guard from
// the wrapped pool. When ctx is nil a background context is used.
func (b *Bounded[T]) Acquire(ctx context.Context) (*Reusable[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("pool %s: %w", b.name, ctx.Err())
	case <-b.sem:
	}
	return b.inner.Pull(b.factory), nil
}

// AcquireOwned is the owned-guard variant of Acquire.
func (b *Bounded[T]) AcquireOwned(ctx context.Context) (*ReusableOwned[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("pool %s: %w", b.name, ctx.Err())
	case <-b.sem:
	}
	return b.inner.PullOwned(b.factory), nil
}

// TryAcquire attempts a non-blocking acquire, reporting false when every lease
// slot is taken.
func (b *Bounded[T]) TryAcquire() (*Reusable[T], bool) {
	select {
	case <-b.sem:
	default:
		return nil, false
	}
	return b.inner.Pull(b.factory), true
}

// Len reports the number of spare values currently held by the wrapped pool.
func (b *Bounded[T]) Len() int {
	return b.inner.Len()
}

func (b *Bounded[T]) refill() {
	select {
	case b.sem <- struct{}{}:
	default:
		panic(fmt.Sprintf("pool %s: release with no outstanding lease", b.name))
	}
}
