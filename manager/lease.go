package manager

import (
	"sync"

	"github.com/coachpo/repool/pool"
)

// Lease wraps an owned guard pulled through the manager, tying the guard's
// lifetime into the manager's in-flight accounting. A lease settles exactly
// once, whether it is released or detached.
type Lease struct {
	id    string
	pool  string
	guard *pool.ReusableOwned[any]
	mgr   *Manager
	once  sync.Once
}

// ID returns the unique lease identifier surfaced in leak reports.
func (l *Lease) ID() string {
	return l.id
}

// PoolName returns the name of the pool the lease came from.
func (l *Lease) PoolName() string {
	return l.pool
}

// Value exposes the leased value.
func (l *Lease) Value() any {
	return *l.guard.Value()
}

// Release returns the value to its pool. Calling Release again is a no-op.
func (l *Lease) Release() {
	l.guard.Release()
	l.settle()
}

// Detach hands the leased value to the caller, disabling the automatic return.
// The manager stops tracking the lease; returning the value later is the
// caller's responsibility, via the pool handle of a fresh pull or a new
// registration.
func (l *Lease) Detach() any {
	_, value := l.guard.Detach()
	l.settle()
	return value
}

func (l *Lease) settle() {
	l.once.Do(func() {
		l.mgr.settle(l.id)
	})
}
