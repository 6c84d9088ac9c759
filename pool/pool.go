package pool

import (
	"sync"
	"time"
)

// Pool is a concurrency-safe LIFO store of values of type T. Values are
// borrowed through the pull operations and handed back either by the guard's
// Release or by a manual Attach after a Detach. LIFO order is deliberate: the
// most recently released value is reused first, favouring cache and resource
// locality.
//
// The lock is held only for the duration of a single push or pop, never across
// caller-supplied closures. No operation blocks waiting for availability;
// saturation is reported immediately as an empty result.
//
// The zero value is not usable; construct pools with New or FromSlice.
type Pool[T any] struct {
	mu      sync.Mutex
	objects []T

	name      string
	metrics   *Metrics
	onRelease []func()
	onDetach  []func()
	debug     *debugState
}

// New eagerly builds count values by invoking init that many times. A count of
// zero is valid and yields an empty pool; init may then be nil.
func New[T any](count int, init func() T, opts ...Option) *Pool[T] {
	if count < 0 {
		panic("pool: count must be non-negative")
	}
	if count > 0 && init == nil {
		panic("pool: init must be provided for a non-empty pool")
	}
	objects := make([]T, 0, count)
	for i := 0; i < count; i++ {
		objects = append(objects, init())
	}
	return newPool(objects, opts)
}

// FromSlice wraps a copy of values as the initial stack contents, preserving
// relative order: the last element becomes the top of the stack.
func FromSlice[T any](values []T, opts ...Option) *Pool[T] {
	objects := make([]T, len(values))
	copy(objects, values)
	return newPool(objects, opts)
}

func newPool[T any](objects []T, opts []Option) *Pool[T] {
	cfg := applyOptions(opts)
	p := &Pool[T]{
		objects:   objects,
		name:      cfg.name,
		metrics:   cfg.metrics,
		onRelease: cfg.onRelease,
		onDetach:  cfg.onDetach,
		debug:     newDebugState(cfg.name),
	}
	p.metrics.observeIdle(p.name, len(objects))
	return p
}

// Len reports the number of values the pool currently holds. The result is
// point-in-time and may be stale immediately under concurrent use.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.objects)
}

// IsEmpty reports whether the pool currently holds no spare values.
func (p *Pool[T]) IsEmpty() bool {
	return p.Len() == 0
}

// Name returns the pool name used in metrics labels and diagnostics.
func (p *Pool[T]) Name() string {
	return p.name
}

// TryPull pops the top of the stack and wraps it in a borrowed guard. It
// reports false when the pool is saturated. It never blocks and never
// constructs new values.
func (p *Pool[T]) TryPull() (*Reusable[T], bool) {
	value, ok := p.pop()
	if !ok {
		p.metrics.observePull(p.name, outcomeMiss)
		return nil, false
	}
	p.metrics.observePull(p.name, outcomeHit)
	return p.wrap(value), true
}

// Pull behaves like TryPull but invokes fallback to construct a fresh value
// when the pool is saturated. The fresh value is not counted by the pool until
// its guard is eventually released or the value reattached.
func (p *Pool[T]) Pull(fallback func() T) *Reusable[T] {
	if fallback == nil {
		panic("pool: fallback must be provided")
	}
	value, ok := p.pop()
	if ok {
		p.metrics.observePull(p.name, outcomeHit)
		return p.wrap(value)
	}
	p.metrics.observePull(p.name, outcomeFallback)
	return p.wrap(fallback())
}

// TryPullOwned is the owned-guard variant of TryPull. The returned guard may
// cross goroutines and outlive the frame that pulled it.
func (p *Pool[T]) TryPullOwned() (*ReusableOwned[T], bool) {
	value, ok := p.pop()
	if !ok {
		p.metrics.observePull(p.name, outcomeMiss)
		return nil, false
	}
	p.metrics.observePull(p.name, outcomeHit)
	return p.wrapOwned(value), true
}

// PullOwned is the owned-guard variant of Pull.
func (p *Pool[T]) PullOwned(fallback func() T) *ReusableOwned[T] {
	if fallback == nil {
		panic("pool: fallback must be provided")
	}
	value, ok := p.pop()
	if ok {
		p.metrics.observePull(p.name, outcomeHit)
		return p.wrapOwned(value)
	}
	p.metrics.observePull(p.name, outcomeFallback)
	return p.wrapOwned(fallback())
}

// Attach unconditionally pushes value onto the top of the stack, growing the
// pool's held count by one. It always succeeds.
func (p *Pool[T]) Attach(value T) {
	p.mu.Lock()
	p.objects = append(p.objects, value)
	size := len(p.objects)
	p.mu.Unlock()
	p.metrics.observeAttach(p.name, size)
}

// ActiveStacks returns acquisition stacks for guards that have not completed.
// It returns nil unless the library is built with the debug tag.
func (p *Pool[T]) ActiveStacks() []string {
	return p.debug.activeStacks()
}

func (p *Pool[T]) pop() (T, bool) {
	p.mu.Lock()
	n := len(p.objects)
	if n == 0 {
		p.mu.Unlock()
		var zero T
		return zero, false
	}
	value := p.objects[n-1]
	var zero T
	p.objects[n-1] = zero
	p.objects = p.objects[:n-1]
	p.mu.Unlock()
	p.metrics.observeIdle(p.name, n-1)
	return value, true
}

func (p *Pool[T]) wrap(value T) *Reusable[T] {
	r := &Reusable[T]{pool: p, value: value, lease: p.debug.newLease()}
	if p.metrics != nil {
		r.pulledAt = time.Now()
	}
	p.debug.recordAcquire(r.lease, value)
	return r
}

func (p *Pool[T]) wrapOwned(value T) *ReusableOwned[T] {
	r := &ReusableOwned[T]{pool: p, value: value, lease: p.debug.newLease()}
	if p.metrics != nil {
		r.pulledAt = time.Now()
	}
	p.debug.recordAcquire(r.lease, value)
	return r
}

func (p *Pool[T]) returned(value T, pulledAt time.Time, lease string) {
	p.debug.recordRelease(lease)
	p.Attach(value)
	p.metrics.observeHold(p.name, pulledAt)
	for _, hook := range p.onRelease {
		hook()
	}
}

func (p *Pool[T]) detached(lease string) {
	p.debug.recordRelease(lease)
	p.metrics.observeDetach(p.name)
	for _, hook := range p.onDetach {
		hook()
	}
}

func (p *Pool[T]) doubleRelease(lease string) {
	p.metrics.incDoubleRelease()
	p.debug.flagDoubleRelease(p.name, lease)
}
