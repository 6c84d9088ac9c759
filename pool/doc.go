// Package pool provides a concurrency-safe pool of reusable values with
// automatic return and attach/detach semantics. Its goal is to reuse objects
// that are expensive to allocate or construct: buffers, connections, parsers.
//
// A pool is created with a capacity and an initializer:
//
//	bufs := pool.New(32, func() []byte { return make([]byte, 0, 4096) })
//
// Pulling hands back a guard wrapping the value. The guard owns the value
// until it is released, at which point the value lands back on the pool's
// stack:
//
//	buf, ok := bufs.TryPull() // ok is false when the pool is saturated
//	if ok {
//		defer buf.Release()
//		*buf.Value() = append((*buf.Value())[:0], payload...)
//	}
//
// Pull constructs a replacement on the spot instead of reporting saturation:
//
//	buf := bufs.Pull(func() []byte { return make([]byte, 0, 4096) })
//	defer buf.Release()
//
// Detach transfers ownership of the value to the caller and disables the
// automatic return; the caller may mutate the value freely and reattach it
// later, or discard it to permanently shrink the pool by one:
//
//	guard := bufs.Pull(newBuf)
//	p, raw := guard.Detach()
//	raw = transform(raw)
//	p.Attach(raw)
//
// The owned guard variants (TryPullOwned, PullOwned) may cross goroutines and
// outlive the frame that pulled them, at the cost of atomic bookkeeping on
// teardown.
//
// Values are returned to the pool as-is: the pool never resets, clears, or
// validates them. Callers that need pristine objects should reset after
// pulling.
package pool
