// Package manager coordinates named pools, providing registration from
// configuration, in-flight lease accounting, and graceful shutdown semantics
// for pooled resources.
package manager

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/coachpo/repool/config"
	"github.com/coachpo/repool/errs"
	"github.com/coachpo/repool/observability"
	"github.com/coachpo/repool/pool"
)

var (
	// ErrNotRegistered indicates the requested pool has not been registered.
	ErrNotRegistered = errs.New("manager", errs.CodeNotFound, errs.WithMessage("pool not registered"))
	// ErrClosed indicates the manager is shutting down and cannot service requests.
	ErrClosed = errs.New("manager", errs.CodeUnavailable, errs.WithMessage("shutdown in progress"))
)

const defaultShutdownTimeout = 5 * time.Second

// Manager coordinates named pools of interface-typed values. Every pull is
// tracked as a lease until its guard completes, which lets Shutdown wait for
// outstanding values and name the leak candidates when they never come back.
type Manager struct {
	mu           sync.RWMutex
	pools        map[string]*entry
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	inFlight     sync.WaitGroup
	activeCount  atomic.Int64
	leases       sync.Map // map[string]*leaseRecord
	metrics      *pool.Metrics
}

type entry struct {
	pool    *pool.Pool[any]
	factory func() any
}

type leaseRecord struct {
	pool       string
	acquiredAt time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics instruments every pool registered on the manager with m.
func WithMetrics(m *pool.Metrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// New constructs an initialized manager ready for pool registration.
func New(opts ...Option) *Manager {
	m := new(Manager)
	m.pools = make(map[string]*entry)
	m.shutdownCh = make(chan struct{})
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Register adds a pool with the provided name, pre-built capacity, and value
// factory. The factory also serves as the saturation fallback for Pull.
func (m *Manager) Register(name string, capacity int, factory func() any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.New("manager", errs.CodeInvalid, errs.WithMessage("pool name must be non-empty"))
	}
	if capacity <= 0 {
		return errs.New("manager", errs.CodeInvalid, errs.WithPool(name),
			errs.WithMessage("capacity must be positive"))
	}
	if factory == nil {
		return errs.New("manager", errs.CodeInvalid, errs.WithPool(name),
			errs.WithMessage("factory must be provided"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.shutdownCh:
		return ErrClosed
	default:
	}

	if _, exists := m.pools[name]; exists {
		return errs.New("manager", errs.CodeConflict, errs.WithPool(name),
			errs.WithMessage("pool already registered"))
	}

	m.pools[name] = &entry{
		pool:    pool.New(capacity, factory, pool.WithName(name), pool.WithMetrics(m.metrics)),
		factory: factory,
	}
	return nil
}

// ApplyConfig registers every pool declared in cfg, looking up each value
// factory by pool name.
func (m *Manager) ApplyConfig(cfg config.Config, factories map[string]func() any) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, pc := range cfg.Pools {
		factory, ok := factories[pc.Name]
		if !ok {
			return errs.New("manager", errs.CodeInvalid, errs.WithPool(pc.Name),
				errs.WithMessage("no factory for configured pool"))
		}
		if err := m.Register(pc.Name, pc.Capacity, factory); err != nil {
			return err
		}
	}
	return nil
}

// Pull acquires a lease from the named pool, constructing a fresh value with
// the registered factory when the pool is saturated.
func (m *Manager) Pull(name string) (*Lease, error) {
	select {
	case <-m.shutdownCh:
		return nil, ErrClosed
	default:
	}

	e, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return m.lease(name, e.pool.PullOwned(e.factory)), nil
}

// TryPull acquires a lease without constructing new values, reporting false
// when the named pool is saturated.
func (m *Manager) TryPull(name string) (*Lease, bool, error) {
	select {
	case <-m.shutdownCh:
		return nil, false, ErrClosed
	default:
	}

	e, err := m.lookup(name)
	if err != nil {
		return nil, false, err
	}
	guard, ok := e.pool.TryPullOwned()
	if !ok {
		return nil, false, nil
	}
	return m.lease(name, guard), true, nil
}

// Active reports the number of leases currently outstanding.
func (m *Manager) Active() int64 {
	return m.activeCount.Load()
}

// Shutdown stops servicing requests and waits for all outstanding leases to
// settle, or until the context expires (defaulting to 5 seconds). Unreturned
// leases are logged with their pool, age, and any acquisition stacks.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, defaultShutdownTimeout)
	}
	if cancel != nil {
		defer cancel()
	}

	m.shutdownOnce.Do(func() {
		close(m.shutdownCh)
	})

	done := make(chan struct{})
	go func() {
		m.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		remaining := m.activeCount.Load()
		m.logOutstanding(remaining)
		return fmt.Errorf("shutdown timeout: %d pooled objects unreturned", remaining)
	}
}

func (m *Manager) lookup(name string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.pools[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return e, nil
}

func (m *Manager) lease(name string, guard *pool.ReusableOwned[any]) *Lease {
	l := &Lease{
		id:    uuid.NewString(),
		pool:  name,
		guard: guard,
		mgr:   m,
	}
	m.inFlight.Add(1)
	m.activeCount.Add(1)
	m.leases.Store(l.id, &leaseRecord{pool: name, acquiredAt: time.Now()})
	return l
}

func (m *Manager) settle(id string) {
	m.leases.Delete(id)
	m.activeCount.Add(-1)
	m.inFlight.Done()
}

func (m *Manager) logOutstanding(remaining int64) {
	if remaining <= 0 {
		return
	}
	logger := observability.Log()
	logger.Error("pool manager shutdown timed out", observability.F("outstanding", remaining))

	m.leases.Range(func(key, value any) bool {
		record, ok := value.(*leaseRecord)
		if !ok {
			return true
		}
		logger.Error("leak candidate",
			observability.F("lease", key),
			observability.F("pool", record.pool),
			observability.F("age", time.Since(record.acquiredAt).Round(time.Millisecond)),
		)
		return true
	})

	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, e := range m.pools {
		for _, stack := range e.pool.ActiveStacks() {
			logger.Error("acquisition stack",
				observability.F("pool", name),
				observability.F("stack", stack),
			)
		}
	}
}
