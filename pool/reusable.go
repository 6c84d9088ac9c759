package pool

import "time"

const (
	guardLive uint32 = iota
	guardReleased
	guardDetached
)

// Reusable is a borrowed guard wrapping one value pulled from a pool. The
// guard exclusively owns its value until Release or Detach; no aliasing exists
// between a live guard and the pool's stack.
//
// A Reusable is intended for scoped use on a single goroutine, typically with
// a deferred Release. Use ReusableOwned when the guard must cross goroutines
// or outlive the frame that pulled it.
type Reusable[T any] struct {
	pool     *Pool[T]
	value    T
	pulledAt time.Time
	lease    string
	state    uint32
}

// NewReusable wraps an externally obtained value in a borrowed guard against
// p. Releasing the guard attaches the value to p exactly as if it had been
// pulled, making this an alternative to a manual Attach after a Detach.
func NewReusable[T any](p *Pool[T], value T) *Reusable[T] {
	return p.wrap(value)
}

// Value exposes the wrapped value for reading and writing. The pointer must
// not be retained past Release or Detach.
func (r *Reusable[T]) Value() *T {
	return &r.value
}

// Release returns the value to the originating pool. The return fires exactly
// once: calling Release again is a no-op, and Release after Detach is a no-op,
// which keeps a deferred Release safe alongside an explicit exit path.
func (r *Reusable[T]) Release() {
	switch r.state {
	case guardDetached:
		return
	case guardReleased:
		r.pool.doubleRelease(r.lease)
		return
	}
	r.state = guardReleased
	value := r.value
	var zero T
	r.value = zero
	r.pool.returned(value, r.pulledAt, r.lease)
}

// Detach transfers ownership of the value to the caller and permanently
// disables the guard's automatic return. It yields the originating pool so
// the caller can reattach the value later; discarding the value instead
// permanently shrinks the pool's held count by one, which is intentional.
//
// Detach panics when the guard has already released its value: a completed
// guard owns nothing to hand over.
func (r *Reusable[T]) Detach() (*Pool[T], T) {
	if r.state != guardLive {
		panic("pool: detach of a completed guard")
	}
	r.state = guardDetached
	value := r.value
	var zero T
	r.value = zero
	r.pool.detached(r.lease)
	return r.pool, value
}
